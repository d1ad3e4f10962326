// Package validation collects field-level validation messages keyed by the
// request field name. Messages read like "The first name field is required."
package validation

import (
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for wall-clock times.
const TimeLayout = "15:04"

// Errors maps a field name to its messages. It implements error so services
// can return it directly; the HTTP layer renders it as a 422 envelope.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed")
	for _, f := range fields {
		b.WriteString("; ")
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(strings.Join(e[f], " "))
	}
	return b.String()
}

// Mode controls how absent fields are treated.
type Mode int

const (
	// Required reports absent fields as missing (create).
	Required Mode = iota
	// Sometimes skips absent fields and validates only supplied ones (update).
	Sometimes
)

// Rule checks a present, non-blank value. It returns "" on success or a
// message built from the human-readable field label.
type Rule func(label, value string) string

// Validator accumulates messages across fields.
type Validator struct {
	mode Mode
	errs Errors
}

func New(mode Mode) *Validator {
	return &Validator{mode: mode, errs: Errors{}}
}

// Field validates a field that must be present on create. A supplied blank
// value is always rejected.
func (v *Validator) Field(name string, value *string, rules ...Rule) *Validator {
	label := Label(name)
	if value == nil {
		if v.mode == Required {
			v.Add(name, "The "+label+" field is required.")
		}
		return v
	}
	if strings.TrimSpace(*value) == "" {
		v.Add(name, "The "+label+" field is required.")
		return v
	}
	return v.apply(name, label, *value, rules)
}

// Optional validates a field that may be absent or blank in either mode.
func (v *Validator) Optional(name string, value *string, rules ...Rule) *Validator {
	if value == nil || strings.TrimSpace(*value) == "" {
		return v
	}
	return v.apply(name, Label(name), *value, rules)
}

func (v *Validator) apply(name, label, value string, rules []Rule) *Validator {
	for _, rule := range rules {
		if msg := rule(label, value); msg != "" {
			v.Add(name, msg)
		}
	}
	return v
}

// Add records a message for name. Used for checks that need I/O, such as
// uniqueness or existence.
func (v *Validator) Add(name, message string) {
	v.errs[name] = append(v.errs[name], message)
}

// Has reports whether name already failed. Callers use it to skip lookups
// for values that are already known to be malformed.
func (v *Validator) Has(name string) bool {
	return len(v.errs[name]) > 0
}

// Err returns the accumulated Errors, or nil when every field passed.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// Label turns a field name into words: "emergencyContact.name" becomes
// "emergency contact name".
func Label(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '.' || r == '_':
			b.WriteRune(' ')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteRune(' ')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaxLen limits the value to n characters.
func MaxLen(n int) Rule {
	return func(label, value string) string {
		if utf8.RuneCountInString(value) > n {
			return "The " + label + " must not be greater than " + strconv.Itoa(n) + " characters."
		}
		return ""
	}
}

func Email() Rule {
	return func(label, value string) string {
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@")+1:], ".") {
			return "The " + label + " must be a valid email address."
		}
		return ""
	}
}

// Date requires a YYYY-MM-DD calendar date.
func Date() Rule {
	return func(label, value string) string {
		if _, err := time.Parse(DateLayout, value); err != nil {
			return "The " + label + " is not a valid date."
		}
		return ""
	}
}

// BeforeOrEqual requires a date not later than the date returned by now.
func BeforeOrEqual(now func() time.Time) Rule {
	return func(label, value string) string {
		d, err := time.Parse(DateLayout, value)
		if err != nil {
			return ""
		}
		today, _ := time.Parse(DateLayout, now().UTC().Format(DateLayout))
		if d.After(today) {
			return "The " + label + " must be a date before or equal to today."
		}
		return ""
	}
}

// Time requires a 24-hour HH:MM time.
func Time() Rule {
	return func(label, value string) string {
		if len(value) != len(TimeLayout) {
			return "The " + label + " must match the format H:i."
		}
		if _, err := time.Parse(TimeLayout, value); err != nil {
			return "The " + label + " must match the format H:i."
		}
		return ""
	}
}

// In restricts the value to one of allowed.
func In(allowed ...string) Rule {
	return func(label, value string) string {
		for _, a := range allowed {
			if value == a {
				return ""
			}
		}
		return "The selected " + label + " is invalid."
	}
}

func UUID() Rule {
	return func(label, value string) string {
		if _, err := uuid.Parse(value); err != nil {
			return "The " + label + " must be a valid UUID."
		}
		return ""
	}
}

var phonePattern = regexp.MustCompile(`^[0-9+()\-. ]+$`)

// Phone accepts digits and the usual separators.
func Phone() Rule {
	return func(label, value string) string {
		if !phonePattern.MatchString(value) {
			return "The " + label + " format is invalid."
		}
		return ""
	}
}

// Taken is the message for a uniqueness failure.
func Taken(name string) string {
	return "The " + Label(name) + " has already been taken."
}

// Invalid is the message for a reference to a missing record.
func Invalid(name string) string {
	return "The selected " + Label(name) + " is invalid."
}
