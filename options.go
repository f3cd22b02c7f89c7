package xlpatch

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Options holds configuration for a patch invocation.
type Options struct {
	dryRun bool
	filter string
}

// Option configures a patch invocation.
type Option func(*Options)

// WithDryRun computes the full result without rewriting the archive.
func WithDryRun(dry bool) Option {
	return func(o *Options) { o.dryRun = dry }
}

// WithFilter restricts processing to changes matching a boolean expression
// over the change-request fields (sheetName, sourceAddress, beforeName,
// afterName, tableIndex, columnIndex, target), e.g.
// `sheetName == "Sheet1" && target == "column"`. Filtered-out changes are
// neither applied nor reported as issues.
func WithFilter(expression string) Option {
	return func(o *Options) { o.filter = expression }
}

func applyOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// filterChanges evaluates the filter expression, when set, against each
// change and keeps those for which it yields true. A filter that does not
// compile or evaluate is an invocation error, not a per-change issue.
func (o *Options) filterChanges(changes []Change) ([]Change, error) {
	if o.filter == "" {
		return changes, nil
	}
	prog, err := expr.Compile(o.filter, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", o.filter, err)
	}

	kept := make([]Change, 0, len(changes))
	for _, c := range changes {
		env := map[string]any{
			"sheetName":     c.SheetName,
			"sourceAddress": c.SourceAddress,
			"beforeName":    c.BeforeName,
			"afterName":     c.AfterName,
			"tableIndex":    c.TableIndex,
			"columnIndex":   nil,
			"target":        c.Target,
		}
		if c.ColumnIndex != nil {
			env["columnIndex"] = *c.ColumnIndex
		}
		out, err := expr.Run(prog, env)
		if err != nil {
			return nil, fmt.Errorf("evaluate filter %q: %w", o.filter, err)
		}
		if keep, ok := out.(bool); ok && keep {
			kept = append(kept, c)
		}
	}
	return kept, nil
}
