package search

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/playbooklab/sdk/catalog"
)

// Filter is a compiled predicate over tool records, expressed in CEL.
//
// Available variables:
//
//	id            string   tool id
//	name          string   tool name
//	category      string   discovery category
//	rating        double   aggregate rating (0-5)
//	review_count  int      number of reviews
//	tags          list     lowercase search tags
//
// Example expressions:
//
//	rating >= 4.5 && category == "Coding"
//	"anthropic" in tags
//	review_count > 5000 || rating >= 4.8
type Filter struct {
	source  string
	program cel.Program
}

// CompileFilter compiles a CEL expression into a Filter.
// The expression must evaluate to a boolean.
func CompileFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("rating", cel.DoubleType),
		cel.Variable("review_count", cel.IntType),
		cel.Variable("tags", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: failed to create filter environment: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("search: invalid filter expression: %w", iss.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("search: filter expression must evaluate to bool, got %v", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("search: failed to build filter program: %w", err)
	}

	return &Filter{source: expr, program: prg}, nil
}

// Source returns the original filter expression.
func (f *Filter) Source() string { return f.source }

// Matches evaluates the filter against a single tool record.
// Evaluation errors (e.g. an overflow in the expression) are reported
// rather than treated as a non-match.
func (f *Filter) Matches(t catalog.ToolRecord) (bool, error) {
	out, _, err := f.program.Eval(map[string]any{
		"id":           t.ID,
		"name":         t.Name,
		"category":     t.Category,
		"rating":       t.Rating,
		"review_count": t.ReviewCount,
		"tags":         t.Tags,
	})
	if err != nil {
		return false, fmt.Errorf("search: filter evaluation failed: %w", err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("search: filter returned non-bool value %v", out.Value())
	}
	return b, nil
}

// FilterTools narrows a query's tool results with a compiled filter,
// preserving order. A nil filter returns the results unchanged.
func (ix *Index) FilterTools(query string, f *Filter) ([]catalog.ToolRecord, error) {
	results := ix.Tools(query)
	if f == nil {
		return results, nil
	}

	out := results[:0:0]
	for _, t := range results {
		ok, err := f.Matches(t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}
