package translation

import "context"

const (
	// DefaultFromLang is used when a request does not name a source language.
	DefaultFromLang = "auto"
	// DefaultToLang is used when a request does not name a target language.
	DefaultToLang = "zh"
)

// Engine translates text through one concrete provider protocol.
//
// Implementations never return provider, network or parse failures as Go errors:
// every failure is captured into Result.Error so callers only inspect Success().
type Engine interface {
	Name() string
	Translate(ctx context.Context, req Request) Result
	LookupWord(ctx context.Context, word, fromLang, toLang string) Result
	Close() error
}

// Request describes one translation request.
type Request struct {
	Text     string `json:"text"`
	FromLang string `json:"from_lang"` // provider-agnostic code, for example "auto", "en", "zh"
	ToLang   string `json:"to_lang"`
}

// NewRequest builds a request, applying the auto -> zh defaults for empty language codes.
func NewRequest(text, fromLang, toLang string) Request {
	if fromLang == "" {
		fromLang = DefaultFromLang
	}
	if toLang == "" {
		toLang = DefaultToLang
	}
	return Request{Text: text, FromLang: fromLang, ToLang: toLang}
}

// Result is the outcome of one engine call. TranslatedText is empty on failure.
type Result struct {
	SourceText     string      `json:"source_text"`
	TranslatedText string      `json:"translated_text"`
	FromLang       string      `json:"from_lang"`
	ToLang         string      `json:"to_lang"`
	EngineName     string      `json:"engine_name"`
	IsWord         bool        `json:"is_word"`
	WordDetail     *WordDetail `json:"word_detail,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// Success reports whether the call produced a translation.
func (r Result) Success() bool {
	return r.Error == ""
}

// WordDetail carries lexical data for single-word lookups.
type WordDetail struct {
	Word       string        `json:"word"`
	Phonetic   string        `json:"phonetic,omitempty"`
	UKPhonetic string        `json:"uk_phonetic,omitempty"`
	USPhonetic string        `json:"us_phonetic,omitempty"`
	Explains   []string      `json:"explains"`
	Examples   []WordExample `json:"examples"`
}

// WordExample is one bilingual usage pair.
type WordExample struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// maxWordExamples caps the examples kept per lookup.
const maxWordExamples = 3

func failedResult(engineName string, req Request, message string) Result {
	return Result{
		SourceText:     req.Text,
		TranslatedText: "",
		FromLang:       req.FromLang,
		ToLang:         req.ToLang,
		EngineName:     engineName,
		Error:          message,
	}
}

// withSingleExplain turns a successful translation into a word lookup result
// whose only explanation is the translated text.
func withSingleExplain(result Result, word string) Result {
	if !result.Success() {
		return result
	}

	explains := []string{}
	if result.TranslatedText != "" {
		explains = append(explains, result.TranslatedText)
	}

	result.IsWord = true
	result.WordDetail = &WordDetail{
		Word:     word,
		Explains: explains,
		Examples: []WordExample{},
	}
	return result
}
