package keepstyle

import (
	"fmt"
	"strings"
)

// Context holds the fields of one report entry while its line template is
// rendered. Field names are the snake_case keys of the input record.
type Context struct {
	data      map[string]any
	evaluator ExpressionEvaluator
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithEvaluator sets a custom expression evaluator.
func WithEvaluator(ev ExpressionEvaluator) ContextOption {
	return func(c *Context) {
		c.evaluator = ev
	}
}

// NewContext creates a new Context with the given data and options.
func NewContext(data map[string]any, opts ...ContextOption) *Context {
	if data == nil {
		data = make(map[string]any)
	}
	c := &Context{data: data, evaluator: NewExpressionEvaluator()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render evaluates every ${...} expression of template against the context
// and concatenates the results with the literal text. Nil results render
// as nothing.
func (c *Context) Render(template string) (string, error) {
	var b strings.Builder
	for _, seg := range ParseExpressions(template) {
		if !seg.IsExpression {
			b.WriteString(seg.Text)
			continue
		}
		val, err := c.evaluator.Evaluate(seg.Text, c.data)
		if err != nil {
			return "", fmt.Errorf("render %q: %w", template, err)
		}
		if val != nil {
			fmt.Fprintf(&b, "%v", val)
		}
	}
	return b.String(), nil
}
