package contract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// UniquenessChecker reports whether value is still free for field, e.g. an
// unused username or email address.
type UniquenessChecker interface {
	IsUnique(ctx context.Context, field, value string) (bool, error)
}

// ChallengeSource yields the captcha answer held for the current request.
// ok is false when no challenge was issued.
type ChallengeSource interface {
	CurrentAnswer(ctx context.Context) (answer string, ok bool, err error)
}

// Input is everything a rule may look at besides the field's own value.
type Input struct {
	Params Params
	// BodySize is the total request body size in bytes.
	BodySize  int64
	Challenge ChallengeSource
}

const uploadOverheadKB = 800

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}$`)
)

// Evaluator applies rules to request parameters. It holds no per-request
// state and is safe for concurrent use.
type Evaluator struct {
	unique   UniquenessChecker
	validate *validator.Validate
}

// NewEvaluator creates an Evaluator. unique may be nil when no contract uses
// unique[...] rules; evaluating such a rule then fails with ErrLookupFailed.
func NewEvaluator(unique UniquenessChecker) *Evaluator {
	return &Evaluator{
		unique:   unique,
		validate: validator.New(),
	}
}

// Evaluate checks the value of field against rules, in order, and returns the
// first violation as a *ValidationError. Collaborator failures are returned
// wrapped in ErrLookupFailed. Params are never modified.
func (e *Evaluator) Evaluate(ctx context.Context, field string, rules []Rule, in *Input) error {
	value := in.Params[field]
	empty := value.Text == "" && !value.File.Present()

	for _, rule := range rules {
		switch rule.kind {
		case KindRequired:
			if empty {
				return fail(field, CodeEmptyField)
			}
		case KindOptional:
			if empty {
				return nil
			}
		default:
			if err := e.check(ctx, field, value, rule, in); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Evaluator) check(ctx context.Context, field string, value Value, rule Rule, in *Input) error {
	text := value.Text

	switch rule.kind {
	case KindRequiredIfAny:
		for _, sibling := range rule.list {
			if in.Params.Get(sibling) != "" {
				return nil
			}
		}
		return failWith(field, CodeAtLeastOneRequired, strings.Join(rule.list, ","))

	case KindInt:
		if !isDigits(text) {
			return fail(field, CodeInvalidInt)
		}

	case KindDate:
		if !datePattern.MatchString(text) {
			return fail(field, CodeInvalidDate)
		}

	case KindDateTime:
		if !dateTimePattern.MatchString(text) {
			return fail(field, CodeInvalidDate)
		}

	case KindMaxLength:
		if utf8.RuneCountInString(text) > rule.n {
			return failWith(field, CodeExceedsCharacters, strconv.Itoa(rule.n))
		}

	case KindMinLength:
		if utf8.RuneCountInString(text) < rule.n {
			return failWith(field, CodeBelowCharacters, strconv.Itoa(rule.n))
		}

	case KindUnique:
		if e.unique == nil {
			return fmt.Errorf("%w: unique[%s]: no uniqueness checker configured", ErrLookupFailed, rule.field)
		}
		free, err := e.unique.IsUnique(ctx, rule.field, text)
		if err != nil {
			return fmt.Errorf("%w: unique[%s]: %w", ErrLookupFailed, rule.field, err)
		}
		if !free {
			return failWith(field, CodeInUse, rule.field)
		}

	case KindEmail:
		if e.validate.Var(text, "required,email") != nil {
			return fail(field, CodeInvalidEmail)
		}

	case KindURL:
		if e.validate.Var(text, "required,url") != nil {
			return fail(field, CodeInvalidURL)
		}

	case KindStrongPassword:
		if !isStrongPassword(text) {
			return fail(field, CodeWeakPassword)
		}

	case KindValidCharacters:
		if !hasOnlyNameCharacters(text) {
			return fail(field, CodeInvalidCharacters)
		}

	case KindMatches:
		if in.Params.Has(rule.field) && text != in.Params.Get(rule.field) {
			return failWith(field, CodeNoMatch, rule.field)
		}

	case KindIn:
		for _, allowed := range rule.list {
			if text == allowed {
				return nil
			}
		}
		return fail(field, CodeNotInList)

	case KindMatchesCaptcha:
		if in.Challenge == nil {
			return fail(field, CodeInvalidCaptcha)
		}
		answer, ok, err := in.Challenge.CurrentAnswer(ctx)
		if err != nil {
			return fmt.Errorf("%w: matches-captcha: %w", ErrLookupFailed, err)
		}
		if !ok || answer == "" || !strings.EqualFold(text, answer) {
			return fail(field, CodeInvalidCaptcha)
		}

	case KindMaxFileSize:
		var fileSize int64
		if value.File != nil {
			fileSize = value.File.Size
		}
		bodyKB := float64(in.BodySize) / 1024
		fileKB := float64(fileSize) / 1024
		if bodyKB > float64(rule.n+uploadOverheadKB) || fileKB > float64(rule.n) {
			return failWith(field, CodeExceedsMaxFileSize, strconv.Itoa(rule.n))
		}

	case KindFileExtensions:
		ext := value.File.Extension()
		for _, allowed := range rule.list {
			if ext == allowed {
				return nil
			}
		}
		return fail(field, CodeInvalidFileExtension)

	default:
		return fmt.Errorf("contract: rule kind %d is not evaluable", rule.kind)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isStrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < 6 {
		return false
	}
	var digit, letter bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		}
	}
	return digit && letter
}

func hasOnlyNameCharacters(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
