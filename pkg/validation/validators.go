package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Letters, digits, spaces and the punctuation found in shop and person names: . ' - / & ( ) ,
	nameRegex = regexp.MustCompile(`^[\p{L}\p{M}0-9 .'/&(),-]+$`)

	// Free-text phone numbers: digits with optional +, spaces, dashes and parentheses
	phoneCharsRegex = regexp.MustCompile(`^\+?[0-9 ()-]+$`)
)

// RegisterValidators adds the custom tags to v (gin's engine or one from New).
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// New returns a validator reading the same `binding` tags gin uses, for validating
// requests that do not arrive over HTTP.
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidators(v)
	return v
}

func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return nameRegex.MatchString(val)
}

// ValidPhone accepts an Indian mobile number once formatting characters are stripped:
// ten digits, or the same with a trunk 0 or a 91 country prefix.
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	if !phoneCharsRegex.MatchString(val) {
		return false
	}
	var b strings.Builder
	for _, r := range val {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch len(digits) {
	case 10:
		return true
	case 11:
		return digits[0] == '0'
	case 12:
		return strings.HasPrefix(digits, "91")
	}
	return false
}

func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		// Supplementary planes are almost entirely emoji and pictographs
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}
