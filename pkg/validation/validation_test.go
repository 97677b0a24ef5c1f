package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/validation"
)

func TestCustomTags(t *testing.T) {
	v := validation.New()

	type form struct {
		Name  string `binding:"omitempty,valid_name"`
		Phone string `binding:"omitempty,valid_phone"`
		Title string `binding:"omitempty,no_emoji"`
	}

	cases := []struct {
		name  string
		input form
		ok    bool
	}{
		{"plain name", form{Name: "Sharma & Sons (Pvt.)"}, true},
		{"devanagari name", form{Name: "आशा पाटील"}, true},
		{"name with symbols", form{Name: "<script>"}, false},
		{"ten digit phone", form{Phone: "98765 43210"}, true},
		{"phone with country code", form{Phone: "+91-98765-43210"}, true},
		{"phone with trunk zero", form{Phone: "098765 43210"}, true},
		{"short phone", form{Phone: "12345"}, false},
		{"thirteen digit phone", form{Phone: "+91 0 98765 43210"}, false},
		{"eleven digits without trunk zero", form{Phone: "19876543210"}, false},
		{"phone with letters", form{Phone: "98765abcde"}, false},
		{"plain title", form{Title: "Shop helper needed"}, true},
		{"title with emoji", form{Title: "Painter 🎨"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.input)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := validation.New()

	t.Run("Should use form labels", func(t *testing.T) {
		err := v.Struct(domain.EmployerRegistration{})
		require.Error(t, err)
		messages := validation.FormatValidationErrors(err)
		assert.Contains(t, messages, "Name is required")
		assert.Contains(t, messages, "Area / locality is required")
		assert.Contains(t, messages, "WhatsApp number is required")
	})

	t.Run("Should describe oneof and phone failures", func(t *testing.T) {
		err := v.Struct(domain.WorkerRegistration{
			FullName:     "Asha",
			City:         "Pune",
			Area:         "Kothrud",
			Skills:       []string{"painting"},
			Availability: "weekends",
			WhatsApp:     "123",
		})
		require.Error(t, err)
		messages := validation.FormatValidationErrors(err)
		assert.Contains(t, messages, "Availability must be one of: full_day, part_time, flexible")
		assert.Contains(t, messages, "WhatsApp number must be a 10 digit mobile number, optionally with country code")
	})

	t.Run("Should pass through other errors", func(t *testing.T) {
		assert.Equal(t, []string{"boom"}, validation.FormatValidationErrors(errors.New("boom")))
	})
}
