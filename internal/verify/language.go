package verify

import (
	"fmt"
	"strings"
)

type Language string

const (
	English Language = "English"
	Hindi   Language = "Hindi"
)

var languageCodes = map[Language]string{
	English: "en-US",
	Hindi:   "hi-IN",
}

// Languages returns the accepted language names in display order.
func Languages() []Language {
	return []Language{English, Hindi}
}

// ParseLanguage accepts the display name case-insensitively.
func ParseLanguage(name string) (Language, error) {
	trimmed := strings.TrimSpace(name)
	for _, l := range Languages() {
		if strings.EqualFold(string(l), trimmed) {
			return l, nil
		}
	}
	return "", fmt.Errorf("language %q is not supported (want English or Hindi)", name)
}

// Code is the BCP-47 tag sent to the transcription provider.
func (l Language) Code() string {
	return languageCodes[l]
}
