// internal/models/id.go
package models

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const idSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
const idSuffixLength = 6

var nonAlphanumericRuns = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateUniqueThemeID derives a collision-resistant theme id from a display
// name: "custom-<slug>-<unix-millis>-<random>". The random suffix makes two
// calls in the same millisecond yield different ids, so callers never need to
// consult existing ids first.
func GenerateUniqueThemeID(name string) string {
	slug := strings.Trim(nonAlphanumericRuns.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "theme"
	}

	suffix := make([]byte, idSuffixLength)
	for i := range suffix {
		suffix[i] = idSuffixAlphabet[rand.IntN(len(idSuffixAlphabet))]
	}

	return "custom-" + slug + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + string(suffix)
}
