package whatsapp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flowrk-backend/pkg/whatsapp"
)

func TestLink(t *testing.T) {
	t.Run("Should strip formatting and prefix the country code", func(t *testing.T) {
		assert.Equal(t, "https://wa.me/919876543210", whatsapp.Link("+91", "98765 43210", ""))
		assert.Equal(t, "https://wa.me/919876543210", whatsapp.Link("91", "(987) 654-3210", ""))
	})

	t.Run("Should not repeat a country code the number already carries", func(t *testing.T) {
		assert.Equal(t, "https://wa.me/919876543210", whatsapp.Link("91", "+91 98765 43210", ""))
		assert.Equal(t, "https://wa.me/919876543210", whatsapp.Link("91", "91-98765-43210", ""))
		assert.Equal(t, "https://wa.me/919876543210", whatsapp.Link("91", "098765 43210", ""))
	})

	t.Run("Should still prefix a local number that starts with the country digits", func(t *testing.T) {
		assert.Equal(t, "https://wa.me/919123456780", whatsapp.Link("91", "9123456780", ""))
	})

	t.Run("Should encode spaces as %20 in the message", func(t *testing.T) {
		link := whatsapp.Link("91", "9876543210", "Hello there")
		assert.Equal(t, "https://wa.me/919876543210?text=Hello%20there", link)
	})

	t.Run("Should build the enquiry text around the job title", func(t *testing.T) {
		msg := whatsapp.JobEnquiry("Flowrk.in", "House painting")
		assert.Equal(t, `Hello! I saw your job on Flowrk.in - "House painting". Is this still available?`, msg)

		link := whatsapp.Link("91", "9876543210", msg)
		assert.Contains(t, link, "Hello%21%20I%20saw%20your%20job%20on%20Flowrk.in%20-%20%22House%20painting%22.")
	})
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "919876543210", whatsapp.Digits("+91 98765-43210"))
	assert.Equal(t, "", whatsapp.Digits("n/a"))
}
