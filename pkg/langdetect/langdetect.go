// Package langdetect guesses the language identifier of a source file from
// its name and contents.
package langdetect

import (
	"errors"
	"path"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/codescribe/pkg/textutil"
)

// Sentinel errors for detection.
var (
	ErrBinary          = errors.New("binary content")
	ErrUnknownLanguage = errors.New("language could not be detected")
)

// identifiers maps lower-cased linguist names onto the identifiers the
// analyzers recognize. Other languages keep their lower-cased name.
var identifiers = map[string]string{
	"javascript": "javascript",
	"typescript": "typescript",
	"tsx":        "tsx",
	"jsx":        "jsx",
	"python":     "python",
	"python 3":   "python",
}

// Detect returns the language identifier for a file. The file name alone is
// tried first; contents break ties and cover extensionless files.
func Detect(fileName string, contents []byte) (string, error) {
	if textutil.IsBinary(contents) {
		return "", ErrBinary
	}

	base := path.Base(fileName)

	lang := enry.GetLanguage(base, nil)
	if lang == "" && len(contents) > 0 {
		lang = enry.GetLanguage(base, contents)
	}

	if lang == "" {
		return "", ErrUnknownLanguage
	}

	return Normalize(lang), nil
}

// Normalize maps a linguist language name to an analyzer identifier.
func Normalize(lang string) string {
	lower := strings.ToLower(strings.TrimSpace(lang))
	if id, ok := identifiers[lower]; ok {
		return id
	}

	return lower
}
