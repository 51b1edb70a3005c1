package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	variants []string
	err      error
	calls    int
}

func (s *stubGenerator) Generate(_ context.Context, _ string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.variants, nil
}

func newParser(gen VariantGenerator) *Parser {
	return New(gen, zerolog.Nop())
}

func TestParseAuthoredText(t *testing.T) {
	p := newParser(nil)

	questions := p.Parse(context.Background(), "<question>2+2? <variant>4 <variant>3 <variant>5")
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "2+2?", q.Text)
	assert.Equal(t, []string{"4", "3", "5"}, q.Variants)
	assert.Equal(t, 0, q.CorrectVariantIndex)
	assert.NotEmpty(t, q.ID)
	assert.True(t, q.Valid())
}

func TestParseMultipleBlocks(t *testing.T) {
	p := newParser(nil)
	raw := `
<question>First? <variant>a <variant>b
<question>Second? <variant>c <variant>d <variant>e
<question>   <variant>orphaned variant
<question>
`

	questions := p.Parse(context.Background(), raw)
	require.Len(t, questions, 2)
	assert.Equal(t, "First?", questions[0].Text)
	assert.Equal(t, "Second?", questions[1].Text)
	for _, q := range questions {
		assert.True(t, q.Valid())
	}
}

func TestParseGeneratesMissingVariants(t *testing.T) {
	gen := &stubGenerator{variants: []string{"Paris", "London", "Berlin", "Madrid"}}
	p := newParser(gen)

	questions := p.Parse(context.Background(), "<question>Capital of France?")
	require.Len(t, questions, 1)
	assert.Equal(t, 1, gen.calls)

	q := questions[0]
	assert.Equal(t, "Capital of France?", q.Text)
	assert.Equal(t, []string{"Paris", "London", "Berlin", "Madrid"}, q.Variants)
	assert.Equal(t, 0, q.CorrectVariantIndex)
}

func TestParseFailsOpenOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream down")}
	p := newParser(gen)

	questions := p.Parse(context.Background(), "<question>Capital of France? <question>2+2? <variant>4 <variant>3")
	require.Len(t, questions, 2)

	degraded := questions[0]
	assert.Equal(t, fallbackVariants, degraded.Variants)
	assert.True(t, degraded.Valid())

	// The authored block is untouched by the failing generation task.
	assert.Equal(t, []string{"4", "3"}, questions[1].Variants)
}

func TestParseWithoutGeneratorUsesFallback(t *testing.T) {
	p := newParser(nil)

	questions := p.Parse(context.Background(), "<question>Capital of France?")
	require.Len(t, questions, 1)
	assert.Equal(t, fallbackVariants, questions[0].Variants)
}

func TestParseEmptyInput(t *testing.T) {
	p := newParser(nil)
	assert.Empty(t, p.Parse(context.Background(), ""))
	assert.Empty(t, p.Parse(context.Background(), "   \n  "))
	assert.Empty(t, p.Parse(context.Background(), "<variant>stray before any question"))
}
