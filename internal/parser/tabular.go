package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/platonusquiz/server/internal/domain"
)

// ParseCSV reads comma-delimited rows: column 0 is the question text,
// the remaining non-empty columns are variants, first one correct. Rows
// that cannot yield a valid question are skipped; there is no AI
// fallback here since every row structurally supplies its own columns.
func (p *Parser) ParseCSV(r io.Reader) ([]domain.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var questions []domain.Question
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			p.logger.Warn().Err(err).Msg("skipping malformed csv row")
			continue
		}
		if err != nil {
			return nil, &domain.ParseError{Reason: "unreadable csv input", Err: err}
		}

		if q, ok := rowToQuestion(row); ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// ParseXLSX reads the first sheet of an xlsx workbook with the same
// column mapping as ParseCSV. Malformed workbook bytes fail the whole
// upload with zero questions committed.
func (p *Parser) ParseXLSX(r io.Reader) ([]domain.Question, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &domain.ParseError{Reason: "unreadable xlsx input", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &domain.ParseError{Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &domain.ParseError{Reason: "unreadable xlsx sheet", Err: err}
	}

	var questions []domain.Question
	for _, row := range rows {
		if q, ok := rowToQuestion(row); ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func rowToQuestion(row []string) (domain.Question, bool) {
	if len(row) < 2 {
		return domain.Question{}, false
	}

	text := strings.TrimSpace(row[0])
	if text == "" {
		return domain.Question{}, false
	}

	variants := make([]string, 0, len(row)-1)
	for _, cell := range row[1:] {
		if v := strings.TrimSpace(cell); v != "" {
			variants = append(variants, v)
		}
	}
	if len(variants) == 0 {
		return domain.Question{}, false
	}

	return newQuestion(text, variants), true
}
