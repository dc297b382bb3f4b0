package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/Pluto731/Translation-tools/internal/language"
)

// minLetters is the shortest sample worth handing to the detector; shorter
// inputs produce unreliable guesses.
const minLetters = 2

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Detector reports the application language code of a text sample.
type Detector struct{}

// Detect returns the application code ("en", "zh", "jp", ...) and whether
// detection succeeded.
func (Detector) Detect(text string) (string, bool) {
	code := language.AppCode(DetectISO6391(text))
	return code, code != ""
}

// DetectISO6391 returns the two-letter ISO code of text, or "" when the sample
// is too short or the detector is unsure.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	detected, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// Confidence lists up to limit candidate languages with their confidence values.
func Confidence(text string, limit int) []Candidate {
	sample := strings.TrimSpace(text)
	if sample == "" || limit <= 0 {
		return nil
	}

	values := getDetector().ComputeLanguageConfidenceValues(sample)
	candidates := make([]Candidate, 0, limit)
	for _, value := range values {
		if len(candidates) == limit {
			break
		}
		iso := strings.ToLower(value.Language().IsoCode639_1().String())
		candidates = append(candidates, Candidate{
			Code:       language.AppCode(iso),
			Confidence: value.Value(),
		})
	}
	return candidates
}

// Candidate is one ranked detection guess.
type Candidate struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.Chinese,
				lingua.English,
				lingua.Japanese,
				lingua.Korean,
				lingua.French,
				lingua.German,
				lingua.Russian,
				lingua.Spanish,
				lingua.Portuguese,
				lingua.Italian,
			).
			Build()
	})
	return detector
}
