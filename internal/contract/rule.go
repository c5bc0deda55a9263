package contract

import (
	"strconv"
	"strings"
)

// Kind discriminates the closed set of rules.
type Kind int

// Rule kinds.
const (
	KindRequired Kind = iota + 1
	KindOptional
	KindRequiredIfAny
	KindInt
	KindDate
	KindDateTime
	KindMaxLength
	KindMinLength
	KindUnique
	KindEmail
	KindURL
	KindStrongPassword
	KindValidCharacters
	KindMatches
	KindIn
	KindMatchesCaptcha
	KindMaxFileSize
	KindFileExtensions
)

// Rule is a single validation predicate attached to a field. Rules are plain
// data: a kind plus the threshold, field name or list the kind needs.
type Rule struct {
	kind  Kind
	n     int
	field string
	list  []string
}

// Kind returns the rule's kind.
func (r Rule) Kind() Kind { return r.kind }

// Required fails when the value is empty and no file was uploaded.
func Required() Rule { return Rule{kind: KindRequired} }

// Optional skips the remaining rules of the field when the value is empty and
// no file was uploaded. It only has that effect as the first rule.
func Optional() Rule { return Rule{kind: KindOptional} }

// RequiredIfAny passes when at least one of fields is present and non-empty.
func RequiredIfAny(fields ...string) Rule {
	return Rule{kind: KindRequiredIfAny, list: append([]string(nil), fields...)}
}

// Int accepts decimal digits only.
func Int() Rule { return Rule{kind: KindInt} }

// Date accepts YYYY-MM-DD.
func Date() Rule { return Rule{kind: KindDate} }

// DateTime accepts YYYY-MM-DD HH:MM:SS.
func DateTime() Rule { return Rule{kind: KindDateTime} }

// MaxLength limits the value to n characters.
func MaxLength(n int) Rule { return Rule{kind: KindMaxLength, n: n} }

// MinLength requires at least n characters.
func MinLength(n int) Rule { return Rule{kind: KindMinLength, n: n} }

// Unique asks the UniquenessChecker whether the value is free for field.
func Unique(field string) Rule { return Rule{kind: KindUnique, field: field} }

// Email accepts a structurally valid email address.
func Email() Rule { return Rule{kind: KindEmail} }

// URL accepts a structurally valid absolute URL.
func URL() Rule { return Rule{kind: KindURL} }

// StrongPassword requires six characters with at least one digit and one letter.
func StrongPassword() Rule { return Rule{kind: KindStrongPassword} }

// ValidCharacters restricts the value to letters, digits, underscore and hyphen.
func ValidCharacters() Rule { return Rule{kind: KindValidCharacters} }

// Matches requires the value to equal the value of field, when field was sent.
func Matches(field string) Rule { return Rule{kind: KindMatches, field: field} }

// In restricts the value to values. Empty entries are legal members.
func In(values ...string) Rule {
	return Rule{kind: KindIn, list: append([]string(nil), values...)}
}

// MatchesCaptcha compares the value with the held challenge answer, ignoring case.
func MatchesCaptcha() Rule { return Rule{kind: KindMatchesCaptcha} }

// MaxFileSize limits the uploaded file to kb kilobytes and the whole request
// body to kb+800 kilobytes.
func MaxFileSize(kb int) Rule { return Rule{kind: KindMaxFileSize, n: kb} }

// FileExtensions restricts the uploaded file's extension to exts.
func FileExtensions(exts ...string) Rule {
	lowered := make([]string, len(exts))
	for i, ext := range exts {
		lowered[i] = strings.ToLower(ext)
	}
	return Rule{kind: KindFileExtensions, list: lowered}
}

// String renders the rule in the compact grammar accepted by Parse.
func (r Rule) String() string {
	switch r.kind {
	case KindRequired:
		return "required"
	case KindOptional:
		return "optional"
	case KindRequiredIfAny:
		return "required[" + strings.Join(r.list, ",") + "]"
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindMaxLength:
		return "max-" + strconv.Itoa(r.n)
	case KindMinLength:
		return "min-" + strconv.Itoa(r.n)
	case KindUnique:
		return "unique[" + r.field + "]"
	case KindEmail:
		return "valid-email"
	case KindURL:
		return "valid-url"
	case KindStrongPassword:
		return "strong-password"
	case KindValidCharacters:
		return "valid-characters"
	case KindMatches:
		return "matches[" + r.field + "]"
	case KindIn:
		return "in[" + strings.Join(r.list, ",") + "]"
	case KindMatchesCaptcha:
		return "matches-captcha"
	case KindMaxFileSize:
		return "max-file-size-" + strconv.Itoa(r.n)
	case KindFileExtensions:
		return "valid-file-extensions[" + strings.Join(r.list, ",") + "]"
	default:
		return "unknown"
	}
}
