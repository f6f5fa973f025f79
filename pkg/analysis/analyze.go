package analysis

import (
	"errors"
	"strings"

	"github.com/Sumatoshi-tech/codescribe/pkg/textutil"
)

// DefaultLanguage is used by Submit when a request names no language.
const DefaultLanguage = "javascript"

// ErrEmptyInput is returned by Submit when the code is empty or whitespace.
var ErrEmptyInput = errors.New("no code provided for analysis")

// Analyzer families.
const (
	FamilyJavaScript = "javascript"
	FamilyPython     = "python"
	FamilyGeneric    = "generic"
)

type analyzerFunc func(code, language string) *Result

type analyzerEntry struct {
	family string
	run    analyzerFunc
}

var (
	jsEntry = analyzerEntry{family: FamilyJavaScript, run: analyzeJavaScript}
	pyEntry = analyzerEntry{family: FamilyPython, run: analyzePython}
)

// analyzers maps a normalized language identifier to its analyzer. Anything
// absent falls through to the generic analyzer.
var analyzers = map[string]analyzerEntry{
	"javascript": jsEntry,
	"js":         jsEntry,
	"typescript": jsEntry,
	"ts":         jsEntry,
	"jsx":        jsEntry,
	"tsx":        jsEntry,
	"python":     pyEntry,
	"py":         pyEntry,
}

func lookup(language string) analyzerEntry {
	if entry, ok := analyzers[strings.ToLower(strings.TrimSpace(language))]; ok {
		return entry
	}

	return analyzerEntry{family: FamilyGeneric, run: analyzeGeneric}
}

// Family reports which analyzer handles language.
func Family(language string) string {
	return lookup(language).family
}

// Analyze runs the analyzer selected by language over code. It never fails;
// an unrecognized language gets line accounting only. The language string is
// passed through unchanged to the generic analyzer's explanation.
func Analyze(code, language string) *Result {
	return lookup(language).run(code, language)
}

// Request is one analysis submission.
type Request struct {
	Code     string `json:"code"               yaml:"code"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// Normalize rejects empty code and fills in DefaultLanguage when no
// language is named.
func (r Request) Normalize() (Request, error) {
	if textutil.IsBlank(r.Code) {
		return r, ErrEmptyInput
	}

	if strings.TrimSpace(r.Language) == "" {
		r.Language = DefaultLanguage
	}

	return r, nil
}

// Submit validates req and analyzes it.
func Submit(req Request) (*Result, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	return Analyze(req.Code, req.Language), nil
}
