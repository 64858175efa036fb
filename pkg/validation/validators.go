package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// 0x followed by 1-64 hex digits; short forms like 0x2 are valid addresses
	suiAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)

	// Optional leading @, then 1-64 of letters, digits, underscore, dot, dash
	socialHandleRegex = regexp.MustCompile(`^@?[A-Za-z0-9_.-]{1,64}$`)

	dataImageRegex = regexp.MustCompile(`^data:image/[a-z0-9.+-]+;base64,[A-Za-z0-9+/]+=*$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("sui_address", SuiAddress)
	_ = v.RegisterValidation("avatar_url", AvatarURL)
	_ = v.RegisterValidation("social_handle", SocialHandle)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// New returns a validator with the custom rules registered
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// SuiAddress validates a 0x-prefixed hex account or object address
func SuiAddress(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return suiAddressRegex.MatchString(val)
}

// AvatarURL accepts absolute http(s) URLs and inline base64 image data URIs
func AvatarURL(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	if strings.HasPrefix(val, "data:") {
		return dataImageRegex.MatchString(val)
	}
	u, err := url.Parse(val)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// SocialHandle validates a social account handle
func SocialHandle(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return socialHandleRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false // Supplementary characters (mostly emoji/symbols)
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}
