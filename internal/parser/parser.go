// Package parser turns semi-structured authored input into validated
// question records. Supported front ends: marker-delimited text (with an
// AI fallback for variant-less questions) and tabular CSV/XLSX files.
package parser

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/domain"
)

// Authored-text markers. A <question> tag precedes each question's text,
// a <variant> tag precedes each answer option, and the first listed
// variant is the correct one.
const (
	QuestionMarker = "<question>"
	VariantMarker  = "<variant>"
)

// fallbackVariants replaces generator output when the collaborator is
// unreachable or returns garbage. The question is kept with a degraded
// payload instead of being dropped.
var fallbackVariants = []string{
	"[unavailable] correct answer",
	"[unavailable] option B",
	"[unavailable] option C",
	"[unavailable] option D",
}

// VariantGenerator produces answer variants for a bare question text.
// The contract returns exactly 4 strings with the first one correct.
type VariantGenerator interface {
	Generate(ctx context.Context, questionText string) ([]string, error)
}

// Parser converts raw quiz input into Question records.
type Parser struct {
	generator VariantGenerator
	logger    zerolog.Logger
}

func New(generator VariantGenerator, logger zerolog.Logger) *Parser {
	return &Parser{
		generator: generator,
		logger:    logger.With().Str("component", "question_parser").Logger(),
	}
}

// Parse splits rawText on question markers and builds one Question per
// non-empty block. Blocks that carry text but no variants are completed
// through the variant generator; generation runs as independent
// per-question tasks awaited before the result is returned, and a failed
// or canceled task degrades that question to the fallback payload.
func (p *Parser) Parse(ctx context.Context, rawText string) []domain.Question {
	blocks := strings.Split(rawText, QuestionMarker)
	questions := make([]domain.Question, 0, len(blocks))

	type pending struct {
		index int
		text  string
	}
	var toGenerate []pending

	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}

		segments := strings.Split(block, VariantMarker)
		text := strings.TrimSpace(segments[0])
		if text == "" {
			// Stray delimiter tolerance: variants without a question
			// text are dropped silently.
			continue
		}

		variants := make([]string, 0, len(segments)-1)
		for _, seg := range segments[1:] {
			if v := strings.TrimSpace(seg); v != "" {
				variants = append(variants, v)
			}
		}

		q := newQuestion(text, variants)
		if len(variants) == 0 {
			toGenerate = append(toGenerate, pending{index: len(questions), text: text})
		}
		questions = append(questions, q)
	}

	if len(toGenerate) > 0 && p.generator != nil {
		var wg sync.WaitGroup
		for _, task := range toGenerate {
			wg.Add(1)
			go func(task pending) {
				defer wg.Done()
				questions[task.index].Variants = p.generateVariants(ctx, task.text)
			}(task)
		}
		wg.Wait()
	} else {
		for _, task := range toGenerate {
			questions[task.index].Variants = append([]string(nil), fallbackVariants...)
		}
	}

	return questions
}

func (p *Parser) generateVariants(ctx context.Context, text string) []string {
	variants, err := p.generator.Generate(ctx, text)
	if err != nil {
		p.logger.Warn().Err(err).Str("question", text).Msg("variant generation failed, using fallback")
		return append([]string(nil), fallbackVariants...)
	}
	return variants
}

func newQuestion(text string, variants []string) domain.Question {
	return domain.Question{
		ID:       uuid.NewString(),
		Text:     text,
		Variants: variants,
		// First listed variant is correct by input-format convention.
		CorrectVariantIndex: 0,
	}
}
