package cli

import (
	"strings"

	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/pipeline"
	"github.com/vizcli/viz/pkg/transform"
)

// parseList splits a comma-separated flag value, trimming whitespace and
// dropping empty items.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseSelectors parses repeated COLUMN:V1,V2 expressions into value
// selectors (used by --filter and --exclude).
func parseSelectors(exprs []string) ([]pipeline.ValueSelector, error) {
	var out []pipeline.ValueSelector
	for _, expr := range exprs {
		column, list, ok := strings.Cut(expr, ":")
		column = strings.TrimSpace(column)
		values := parseList(list)
		if !ok || column == "" || len(values) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"invalid selector %q (expected COLUMN:VALUE1,VALUE2)", expr)
		}
		out = append(out, pipeline.ValueSelector{Column: column, Values: values})
	}
	return out, nil
}

// unpivotFlags collects the unpivot-related flag values. Sentinel -1 marks an
// unset index flag.
type unpivotFlags struct {
	idColumns  string
	valueStart int
	valueEnd   int
	varName    string
	valueName  string
}

// build returns the unpivot options, or nil when no unpivot flag was used.
func (f unpivotFlags) build() *transform.UnpivotOptions {
	if f.idColumns == "" && f.valueStart < 0 && f.valueEnd < 0 {
		return nil
	}
	opts := &transform.UnpivotOptions{
		IDColumns:    parseList(f.idColumns),
		VariableName: f.varName,
		ValueName:    f.valueName,
	}
	if f.valueStart >= 0 {
		v := f.valueStart
		opts.ValueStart = &v
	}
	if f.valueEnd >= 0 {
		v := f.valueEnd
		opts.ValueEnd = &v
	}
	return opts
}

// lookupFlags collects the lookup-related flag values.
type lookupFlags struct {
	path   string
	source string
	code   string
	label  string
}

// build returns the lookup options, or nil when no lookup flag was used.
// Using some lookup flags but not all four is an error.
func (f lookupFlags) build() (*pipeline.LookupOptions, error) {
	if f.path == "" && f.source == "" && f.code == "" && f.label == "" {
		return nil, nil
	}
	if f.path == "" || f.source == "" || f.code == "" || f.label == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"lookup requires all of --lookup, --lookup-source, --lookup-code, and --lookup-label")
	}
	return &pipeline.LookupOptions{
		Path:         f.path,
		SourceColumn: f.source,
		CodeColumn:   f.code,
		LabelColumn:  f.label,
	}, nil
}
