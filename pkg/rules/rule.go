package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Kind identifies a validation rule.
type Kind string

const (
	KindRequired  Kind = "required"
	KindMinLength Kind = "minLength"
	KindMaxLength Kind = "maxLength"
	KindPattern   Kind = "pattern"
	KindEmail     Kind = "email"
	KindURL       Kind = "url"
)

// Rule is one immutable validation constraint. Length carries the bound for
// minLength/maxLength; Pattern carries the compiled expression for pattern.
type Rule struct {
	Kind    Kind
	Length  int
	Pattern *regexp.Regexp
	Message string
}

// Value is the resolved state of a field at validation time.
type Value struct {
	Text     string
	Checkbox bool
	Checked  bool
}

// Text wraps a textual field value.
func Text(s string) Value { return Value{Text: s} }

// Checkbox wraps a checkbox state.
func Checkbox(checked bool) Value { return Value{Checkbox: true, Checked: checked} }

// Empty reports whether the value counts as empty: an unchecked checkbox or
// whitespace-only text.
func (v Value) Empty() bool {
	if v.Checkbox {
		return !v.Checked
	}
	return strings.TrimSpace(v.Text) == ""
}

var formats = validator.New()

// Passes evaluates rule against v. Only required fails on empty values; every
// other kind is evaluated on non-empty values alone. Passes has no side
// effects.
func Passes(rule Rule, v Value) bool {
	if rule.Kind == KindRequired {
		return !v.Empty()
	}
	if v.Empty() {
		return true
	}

	switch rule.Kind {
	case KindMinLength:
		return utf8.RuneCountInString(v.Text) >= rule.Length
	case KindMaxLength:
		return utf8.RuneCountInString(v.Text) <= rule.Length
	case KindPattern:
		if rule.Pattern == nil {
			return true
		}
		return rule.Pattern.MatchString(v.Text)
	case KindEmail:
		return formats.Var(strings.TrimSpace(v.Text), "email") == nil
	case KindURL:
		return formats.Var(strings.TrimSpace(v.Text), "url") == nil
	default:
		return true
	}
}

// Failures returns the rules in list that v does not satisfy, preserving
// registration order.
func Failures(list []Rule, v Value) []Rule {
	var failed []Rule
	for _, rule := range list {
		if !Passes(rule, v) {
			failed = append(failed, rule)
		}
	}
	return failed
}

// Required builds a required rule.
func Required(message string) Rule {
	return Rule{Kind: KindRequired, Message: message}
}

// MinLength builds a minimum length rule.
func MinLength(n int, message string) Rule {
	return Rule{Kind: KindMinLength, Length: n, Message: message}
}

// MaxLength builds a maximum length rule.
func MaxLength(n int, message string) Rule {
	return Rule{Kind: KindMaxLength, Length: n, Message: message}
}

// Pattern compiles expr into a pattern rule.
func Pattern(expr, message string) (Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("rules: compile pattern %q: %w", expr, err)
	}
	return Rule{Kind: KindPattern, Pattern: re, Message: message}, nil
}

// MustPattern is Pattern for expressions known at compile time.
func MustPattern(expr, message string) Rule {
	rule, err := Pattern(expr, message)
	if err != nil {
		panic(err)
	}
	return rule
}

// Email builds an email format rule.
func Email(message string) Rule {
	return Rule{Kind: KindEmail, Message: message}
}

// URL builds an absolute URL rule.
func URL(message string) Rule {
	return Rule{Kind: KindURL, Message: message}
}

// DefaultMessage returns the message shown when a rule has none, phrased
// with the field label.
func DefaultMessage(rule Rule, label string) string {
	switch rule.Kind {
	case KindRequired:
		return fmt.Sprintf("%s is required", label)
	case KindMinLength:
		return fmt.Sprintf("%s must be at least %d characters", label, rule.Length)
	case KindMaxLength:
		return fmt.Sprintf("%s must be at most %d characters", label, rule.Length)
	case KindPattern:
		return fmt.Sprintf("%s has an invalid format", label)
	case KindEmail:
		return fmt.Sprintf("%s must be a valid email address", label)
	case KindURL:
		return fmt.Sprintf("%s must be a valid URL", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
