// Package csvimport parses question bank spreadsheets exported as CSV.
//
// Rows whose fields are all empty carry no question. They are counted in
// Result.Blank rather than reported as errors.
package csvimport

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/certbloom/certbloom/internal/models"
)

// Column names. Columns are located by header, so their order does not matter.
const (
	ColQuestionText    = "question_text"
	ColCertificationID = "certification_id"
	ColDifficulty      = "difficulty_level"
	ColQuestionType    = "question_type"
	ColCorrectAnswer   = "correct_answer"
	ColExplanation     = "explanation"
	ColCognitiveLevel  = "cognitive_level"
)

var optionColumns = []string{"option_a", "option_b", "option_c", "option_d", "option_e"}

var requiredColumns = []string{ColQuestionText, ColCertificationID, ColDifficulty, ColCorrectAnswer, "option_a", "option_b"}

// ErrHeader is returned when the header row is missing or incomplete.
var ErrHeader = stderrors.New("invalid csv header")

// Row is a parsed, valid question row.
type Row struct {
	Line     int
	Question models.Question
}

// RowError reports a skipped row.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result holds the valid rows, the reasons the others were skipped and the
// number of blank rows.
type Result struct {
	Rows   []Row
	Errors []RowError
	Blank  int
}

// Parse reads every row of r. Malformed rows are skipped and reported by line;
// only an unusable header or an unreadable stream fails the whole parse.
func Parse(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Result{}, fmt.Errorf("%w: empty file", ErrHeader)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return Result{}, fmt.Errorf("%w: missing columns %s", ErrHeader, strings.Join(missing, ", "))
	}

	var res Result
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				res.Errors = append(res.Errors, RowError{Line: perr.StartLine, Reason: perr.Err.Error()})
				continue
			}
			return res, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if blank(record) {
			res.Blank++
			continue
		}

		q, reason := parseRow(cols, record)
		if reason != "" {
			res.Errors = append(res.Errors, RowError{Line: line, Reason: reason})
			continue
		}
		res.Rows = append(res.Rows, Row{Line: line, Question: q})
	}
	return res, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(cols map[string]int, record []string) (models.Question, string) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	q := models.Question{
		QuestionText:    field(ColQuestionText),
		CertificationID: field(ColCertificationID),
		QuestionType:    strings.ToLower(field(ColQuestionType)),
		CognitiveLevel:  field(ColCognitiveLevel),
		CorrectAnswer:   strings.ToUpper(field(ColCorrectAnswer)),
		Explanation:     field(ColExplanation),
	}
	if q.QuestionText == "" {
		return q, "question_text is required"
	}
	if q.CertificationID == "" {
		return q, "certification_id is required"
	}

	tier, ok := models.ParseDifficulty(field(ColDifficulty))
	if !ok {
		return q, fmt.Sprintf("unknown difficulty_level %q", field(ColDifficulty))
	}
	q.Difficulty = tier

	switch q.QuestionType {
	case "":
		q.QuestionType = models.QuestionTypeMultipleChoice
	case models.QuestionTypeMultipleChoice, models.QuestionTypeScenario, models.QuestionTypeTrueFalse:
	default:
		return q, fmt.Sprintf("unknown question_type %q", q.QuestionType)
	}

	for i, col := range optionColumns {
		if text := field(col); text != "" {
			q.Choices = append(q.Choices, models.AnswerChoice{Label: models.ChoiceLabels[i], Text: text})
		}
	}
	if len(q.Choices) < 2 {
		return q, "at least two options are required"
	}

	if !models.ValidChoiceLabel(q.CorrectAnswer) {
		return q, fmt.Sprintf("correct_answer %q must be one of A-E", q.CorrectAnswer)
	}
	if !q.HasChoice(q.CorrectAnswer) {
		return q, fmt.Sprintf("correct_answer %s names an empty option", q.CorrectAnswer)
	}
	return q, ""
}
