package game

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

type InputKind string

const (
	InputBoolean  InputKind = "boolean"
	InputChoice   InputKind = "choice"
	InputFreeText InputKind = "text"
	InputNumber   InputKind = "number"
)

// FallbackChoices are offered for a multiple-choice question that arrives
// without its possible answers.
var FallbackChoices = []string{"A", "B", "C", "D"}

var booleanChoices = []string{"true", "false"}

// decimalLiteral is what a browser number input produces. It excludes Go-only
// syntax that strconv accepts, such as hex floats and digit separators.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// InputSpec describes how the player answers the current question.
type InputSpec struct {
	Kind    InputKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
	// Integer restricts a number input to whole numbers.
	Integer bool `json:"integer,omitempty"`
}

// Collect turns the raw value the player entered into the answer string sent
// upstream.
func (s InputSpec) Collect(raw string) (string, error) {
	v := strings.TrimSpace(raw)

	switch s.Kind {
	case InputBoolean:
		v = strings.ToLower(v)
		if !slices.Contains(s.Options, v) {
			return "", fmt.Errorf("%w: %q is not true or false", ErrInvalidAnswer, raw)
		}
		return v, nil

	case InputChoice:
		for _, opt := range s.Options {
			if v == strings.TrimSpace(opt) {
				return opt, nil
			}
		}
		return "", fmt.Errorf("%w: %q is not one of the offered choices", ErrInvalidAnswer, raw)

	case InputNumber:
		if s.Integer {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				return "", fmt.Errorf("%w: %q is not a whole number", ErrInvalidAnswer, raw)
			}
			return v, nil
		}
		if !decimalLiteral.MatchString(v) {
			return "", fmt.Errorf("%w: %q is not a number", ErrInvalidAnswer, raw)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w: %q is not a number", ErrInvalidAnswer, raw)
		}
		return v, nil

	default:
		// Free text goes upstream as typed, spaces included.
		return norm.NFC.String(raw), nil
	}
}

// Presenter maps question types onto input specs.
type Presenter struct {
	logger *slog.Logger
}

func NewPresenter(logger *slog.Logger) *Presenter {
	return &Presenter{logger: logger}
}

func (p *Presenter) Present(q treasurehunt.Question) InputSpec {
	switch q.Type {
	case treasurehunt.QuestionBoolean:
		return InputSpec{Kind: InputBoolean, Options: slices.Clone(booleanChoices)}

	case treasurehunt.QuestionMCQ:
		if len(q.Choices) > 0 {
			return InputSpec{Kind: InputChoice, Options: slices.Clone(q.Choices)}
		}
		p.logger.Warn("multiple choice question without possible answers, using fallback", "question", q.Text)
		return InputSpec{Kind: InputChoice, Options: slices.Clone(FallbackChoices)}

	case treasurehunt.QuestionInteger:
		return InputSpec{Kind: InputNumber, Integer: true}

	case treasurehunt.QuestionNumeric:
		return InputSpec{Kind: InputNumber}

	case treasurehunt.QuestionText:
		return InputSpec{Kind: InputFreeText}

	default:
		p.logger.Warn("unknown question type, defaulting to text input", "type", q.RawType)
		return InputSpec{Kind: InputFreeText}
	}
}
