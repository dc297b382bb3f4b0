package translation

import "sort"

type LanguageOption struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

type languageLabel struct {
	english string
	chinese string
}

// languageLabels holds the application language codes. Several follow Baidu's
// conventions (jp, kor, fra, spa) because that is what stored settings carry.
var languageLabels = map[string]languageLabel{
	"auto": {english: "auto-detected language", chinese: "自动检测"},
	"de":   {english: "German", chinese: "德语"},
	"en":   {english: "English", chinese: "英语"},
	"fra":  {english: "French", chinese: "法语"},
	"it":   {english: "Italian", chinese: "意大利语"},
	"jp":   {english: "Japanese", chinese: "日语"},
	"kor":  {english: "Korean", chinese: "韩语"},
	"pt":   {english: "Portuguese", chinese: "葡萄牙语"},
	"ru":   {english: "Russian", chinese: "俄语"},
	"spa":  {english: "Spanish", chinese: "西班牙语"},
	"zh":   {english: "Chinese", chinese: "中文"},
}

var baiduLanguageCodes = map[string]string{
	"zh":   "zh",
	"en":   "en",
	"jp":   "jp",
	"kor":  "kor",
	"fra":  "fra",
	"de":   "de",
	"ru":   "ru",
	"spa":  "spa",
	"pt":   "pt",
	"it":   "it",
	"auto": "auto",
}

var youdaoLanguageCodes = map[string]string{
	"zh":   "zh-CHS",
	"en":   "en",
	"jp":   "ja",
	"kor":  "ko",
	"fra":  "fr",
	"de":   "de",
	"ru":   "ru",
	"spa":  "es",
	"pt":   "pt",
	"it":   "it",
	"auto": "auto",
}

// mapLanguageCode looks code up in a provider table; unknown codes pass through unchanged.
func mapLanguageCode(table map[string]string, code string) string {
	if mapped, ok := table[code]; ok {
		return mapped
	}
	return code
}

// LanguageDisplayName returns the English name for code, or code itself when unknown.
func LanguageDisplayName(code string) string {
	if labels, ok := languageLabels[code]; ok {
		return labels.english
	}
	return code
}

func SupportedLanguageCodes() []string {
	codes := make([]string, 0, len(languageLabels))
	for code := range languageLabels {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LanguageOptions lists selectable languages with "auto" first.
func LanguageOptions() []LanguageOption {
	options := make([]LanguageOption, 0, len(languageLabels))
	options = append(options, LanguageOption{
		Code:   "auto",
		Label:  "Auto detect",
		Native: languageLabels["auto"].chinese,
	})
	for _, code := range SupportedLanguageCodes() {
		if code == "auto" {
			continue
		}
		labels := languageLabels[code]
		options = append(options, LanguageOption{
			Code:   code,
			Label:  labels.english,
			Native: labels.chinese,
		})
	}
	return options
}

// IsSupportedLanguage reports whether code is one of the selectable languages.
func IsSupportedLanguage(code string) bool {
	_, ok := languageLabels[code]
	return ok
}
