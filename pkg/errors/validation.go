package errors

import (
	"net/url"
	"slices"
	"strings"
	"unicode"
)

// MaxIDLength bounds workflow and task IDs accepted from untrusted input.
const MaxIDLength = 256

// ValidateID checks an ID received over the API. It rejects empty IDs,
// overlong ones and IDs containing control characters.
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "%s id cannot be empty", kind)
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidID, "%s id too long (max %d characters)", kind, MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "%s id contains invalid control characters", kind)
		}
	}
	return nil
}

// ValidateURL checks that rawURL parses and uses one of the given schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "invalid URL")
	}
	if !slices.Contains(schemes, strings.ToLower(u.Scheme)) {
		return New(ErrCodeInvalidURL, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
	}
	if u.Host == "" {
		return New(ErrCodeInvalidURL, "URL has no host")
	}
	return nil
}
