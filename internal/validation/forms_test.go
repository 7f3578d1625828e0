package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaBind(t *testing.T) {
	schema := Schema{
		"username": {Required: true, Validate: ValidateUsername},
		"email":    {Required: true, Validate: ValidateEmail},
		"summary":  {Required: true, MaxLen: 10},
		"bio":      {},
	}

	tests := []struct {
		name       string
		values     map[string]string
		wantErrs   []string
		wantNoErrs []string
	}{
		{
			name: "All Valid",
			values: map[string]string{
				"username": "dr_house",
				"email":    "house@example.com",
				"summary":  "short",
			},
			wantNoErrs: []string{"username", "email", "summary", "bio"},
		},
		{
			name:     "Missing Required",
			values:   map[string]string{"username": "dr_house"},
			wantErrs: []string{"email", "summary"},
		},
		{
			name: "Whitespace Counts As Missing",
			values: map[string]string{
				"username": "   ",
				"email":    "house@example.com",
				"summary":  "ok",
			},
			wantErrs: []string{"username"},
		},
		{
			name: "Over MaxLen",
			values: map[string]string{
				"username": "dr_house",
				"email":    "house@example.com",
				"summary":  "this is far too long",
			},
			wantErrs: []string{"summary"},
		},
		{
			name: "Validator Failure",
			values: map[string]string{
				"username": "_leading",
				"email":    "not-an-email",
				"summary":  "ok",
			},
			wantErrs: []string{"username", "email"},
		},
		{
			name:       "Optional Field May Be Absent",
			values:     map[string]string{"username": "dr_house", "email": "h@e.co", "summary": "ok"},
			wantNoErrs: []string{"bio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := schema.Bind(tt.values)
			for _, f := range tt.wantErrs {
				assert.Contains(t, errs, f)
			}
			for _, f := range tt.wantNoErrs {
				assert.NotContains(t, errs, f)
			}
		})
	}
}

func TestSchemaBindTrimsValues(t *testing.T) {
	schema := Schema{"city": {Required: true}}
	clean, errs := schema.Bind(map[string]string{"city": "  Pune  "})
	assert.Empty(t, errs)
	assert.Equal(t, "Pune", clean["city"])
}

func TestOneOf(t *testing.T) {
	v := OneOf("Doctor", "Patient")
	assert.NoError(t, v("Doctor"))
	assert.NoError(t, v("Patient"))
	assert.Error(t, v("Admin"))
	assert.Error(t, v("doctor"))
}
