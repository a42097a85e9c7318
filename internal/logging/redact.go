package logging

import (
	"net/url"
	"strings"
)

// secretKeyPatterns are substrings of attribute keys whose values are masked.
// Matching is case-insensitive.
var secretKeyPatterns = []string{
	"TOKEN",
	"SECRET",
	"PASSWORD",
	"PASSWD",
	"AUTH",
	"CREDENTIAL",
}

// MaskValue masks a potentially sensitive string value.
// Values with 4 or fewer characters are fully masked as "********".
// Longer values show the last 4 characters: "****xxxx".
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// MaskURL redacts the password of URLs with embedded credentials, which
// shows up in proxy settings and private mirror URLs. The password is
// replaced with "xxxxx".
// If the URL cannot be parsed, it is returned unchanged.
func MaskURL(rawURL string) string {
	if !strings.Contains(rawURL, "@") {
		return rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.User == nil {
		return rawURL
	}
	if _, ok := parsed.User.Password(); !ok {
		return rawURL
	}
	return parsed.Redacted()
}

// ShouldMask returns true if the key name suggests it contains sensitive data.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range secretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// redact returns the masked form of value and whether masking applied.
func redact(key, value string) (string, bool) {
	if ShouldMask(key) {
		return MaskValue(value), true
	}
	if masked := MaskURL(value); masked != value {
		return masked, true
	}
	return value, false
}
