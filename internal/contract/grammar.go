package contract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRule is returned by Parse for expressions outside the grammar.
var ErrInvalidRule = errors.New("invalid rule expression")

var keywordRules = map[string]Rule{
	"required":         Required(),
	"optional":         Optional(),
	"int":              Int(),
	"date":             Date(),
	"datetime":         DateTime(),
	"valid-email":      Email(),
	"valid-url":        URL(),
	"strong-password":  StrongPassword(),
	"valid-characters": ValidCharacters(),
	"matches-captcha":  MatchesCaptcha(),
}

// Parse turns one compact rule expression into a Rule.
//
// The grammar is a keyword ("required", "valid-email", ...), a keyword with a
// numeric suffix ("max-20", "min-6", "max-file-size-1000"), or a keyword with a
// bracketed comma separated argument ("in[M,F]", "matches[password]",
// "required[band,song]", "unique[email]", "valid-file-extensions[png,jpg]").
func Parse(expr string) (Rule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Rule{}, fmt.Errorf("%w: empty expression", ErrInvalidRule)
	}

	if open := strings.IndexByte(expr, '['); open > 0 {
		if !strings.HasSuffix(expr, "]") {
			return Rule{}, fmt.Errorf("%w: unterminated argument in %q", ErrInvalidRule, expr)
		}
		name := strings.ToLower(expr[:open])
		arg := expr[open+1 : len(expr)-1]
		if arg == "" {
			return Rule{}, fmt.Errorf("%w: empty argument in %q", ErrInvalidRule, expr)
		}
		list := strings.Split(arg, ",")
		for i := range list {
			list[i] = strings.TrimSpace(list[i])
		}

		switch name {
		case "required":
			return RequiredIfAny(list...), nil
		case "in":
			return In(list...), nil
		case "valid-file-extensions":
			return FileExtensions(list...), nil
		case "unique":
			return single(expr, list, Unique)
		case "matches":
			return single(expr, list, Matches)
		}
		return Rule{}, fmt.Errorf("%w: unknown rule %q", ErrInvalidRule, expr)
	}

	lowered := strings.ToLower(expr)
	if rule, ok := keywordRules[lowered]; ok {
		return rule, nil
	}

	// The longest prefix has to be tried first: "max-file-size-" also starts
	// with "max-".
	for _, numeric := range []struct {
		prefix string
		build  func(int) Rule
	}{
		{"max-file-size-", MaxFileSize},
		{"max-", MaxLength},
		{"min-", MinLength},
	} {
		if !strings.HasPrefix(lowered, numeric.prefix) {
			continue
		}
		n, err := strconv.Atoi(lowered[len(numeric.prefix):])
		if err != nil || n < 0 {
			return Rule{}, fmt.Errorf("%w: bad number in %q", ErrInvalidRule, expr)
		}
		return numeric.build(n), nil
	}

	return Rule{}, fmt.Errorf("%w: unknown rule %q", ErrInvalidRule, expr)
}

func single(expr string, list []string, build func(string) Rule) (Rule, error) {
	if len(list) != 1 || list[0] == "" {
		return Rule{}, fmt.Errorf("%w: %q takes exactly one field", ErrInvalidRule, expr)
	}
	return build(list[0]), nil
}

// ParseAll parses every expression, failing on the first bad one.
func ParseAll(exprs ...string) ([]Rule, error) {
	rules := make([]Rule, 0, len(exprs))
	for _, expr := range exprs {
		rule, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Rules is ParseAll for contract tables built at startup; it panics on a bad
// expression.
func Rules(exprs ...string) []Rule {
	rules, err := ParseAll(exprs...)
	if err != nil {
		// ALLOW-PANIC: contract tables are static and built before serving
		panic(err)
	}
	return rules
}
