package keepstyle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		in   string
		want []ExpressionSegment
	}{
		{"plain", []ExpressionSegment{{Text: "plain"}}},
		{"Bug: ${title}", []ExpressionSegment{{Text: "Bug: "}, {IsExpression: true, Text: "title"}}},
		{"${a}${b}", []ExpressionSegment{{IsExpression: true, Text: "a"}, {IsExpression: true, Text: "b"}}},
		{`${x == "}" ? 1 : 2}!`, []ExpressionSegment{{IsExpression: true, Text: `x == "}" ? 1 : 2`}, {Text: "!"}}},
		{"${ {'a': 1}.a }", []ExpressionSegment{{IsExpression: true, Text: " {'a': 1}.a "}}},
		{"open ${never", []ExpressionSegment{{Text: "open ${never"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExpressions(tt.in))
		})
	}
	assert.Empty(t, ParseExpressions(""))
}

func TestCheckExpressionSyntax(t *testing.T) {
	assert.NoError(t, CheckExpressionSyntax("no expressions"))
	assert.NoError(t, CheckExpressionSyntax(`${severity == "" ? "" : "[" + severity + "] "}${title}`))
	assert.Error(t, CheckExpressionSyntax("${title +}"))
}

func TestEvaluator(t *testing.T) {
	ev := NewExpressionEvaluator()

	v, err := ev.Evaluate("a + b", map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = ev.Evaluate("a + b", map[string]any{"a": 5, "b": 6})
	require.NoError(t, err)
	assert.Equal(t, 11, v, "cached program runs against new data")

	v, err = ev.Evaluate("  ", nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ev.Evaluate("a +", map[string]any{"a": 1})
	assert.Error(t, err)
}

func TestContextRender(t *testing.T) {
	ctx := NewContext(map[string]any{"title": "Login crash", "severity": "High"})

	s, err := ctx.Render("[${severity}] ${title}")
	require.NoError(t, err)
	assert.Equal(t, "[High] Login crash", s)

	s, err = ctx.Render("${lower(severity)}")
	require.NoError(t, err)
	assert.Equal(t, "high", s)

	s, err = ctx.Render("x${missing}y")
	require.NoError(t, err)
	assert.Equal(t, "xy", s, "undefined variables render as nothing")

	_, err = ctx.Render("${title +}")
	assert.Error(t, err)
}

type bracketEvaluator struct{}

func (bracketEvaluator) Evaluate(expression string, data map[string]any) (any, error) {
	return "<" + expression + ">", nil
}

func TestContextCustomEvaluator(t *testing.T) {
	ctx := NewContext(nil, WithEvaluator(bracketEvaluator{}))
	s, err := ctx.Render("a ${b} c")
	require.NoError(t, err)
	assert.Equal(t, "a <b> c", s)
}
