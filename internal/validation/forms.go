package validation

import (
	"fmt"
	"strings"
)

// FieldRule describes how a single form field is validated.
type FieldRule struct {
	Required bool
	MaxLen   int
	// Validate runs after the required/length checks, on non-empty values only.
	Validate func(string) error
}

// Schema maps field names to their rules. A Schema is a pure description:
// binding it against raw values never touches transport or storage.
type Schema map[string]FieldRule

// Bind checks raw form values against the schema and returns per-field
// error messages. An empty map means the form is valid. Values are
// trimmed before checking; the trimmed values are written back into the
// returned map of clean values.
func (s Schema) Bind(values map[string]string) (map[string]string, map[string]string) {
	clean := make(map[string]string, len(values))
	errs := make(map[string]string)

	for name, rule := range s {
		v := strings.TrimSpace(values[name])
		clean[name] = v

		if v == "" {
			if rule.Required {
				errs[name] = "This field is required"
			}
			continue
		}

		if rule.MaxLen > 0 && len(v) > rule.MaxLen {
			errs[name] = fmt.Sprintf("Must not exceed %d characters", rule.MaxLen)
			continue
		}

		if rule.Validate != nil {
			if err := rule.Validate(v); err != nil {
				errs[name] = err.Error()
			}
		}
	}

	return clean, errs
}

// Fields returns the schema's field names, for form view-models.
func (s Schema) Fields() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// OneOf returns a validator accepting only the listed values.
func OneOf(allowed ...string) func(string) error {
	return func(v string) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
	}
}
