package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	// DefaultYoudaoAPIURL is the Youdao text translation endpoint.
	DefaultYoudaoAPIURL = "https://openapi.youdao.com/api"

	youdaoSignType        = "v3"
	youdaoTruncateLimit   = 20
	youdaoTruncateKeepLen = 10
)

// YoudaoEngine calls the Youdao open API, signing each request with SHA-256 (v3).
type YoudaoEngine struct {
	appKey    string
	appSecret string
	apiURL    string
	client    *resty.Client
	newSalt   func() string
	now       func() time.Time
}

func NewYoudaoEngine(appKey, appSecret, apiURL string) *YoudaoEngine {
	endpoint := strings.TrimSpace(apiURL)
	if endpoint == "" {
		endpoint = DefaultYoudaoAPIURL
	}
	return &YoudaoEngine{
		appKey:    strings.TrimSpace(appKey),
		appSecret: strings.TrimSpace(appSecret),
		apiURL:    endpoint,
		client:    resty.New().SetTimeout(restRequestTimeout),
		newSalt:   uuid.NewString,
		now:       time.Now,
	}
}

func (e *YoudaoEngine) Name() string {
	return "youdao"
}

func (e *YoudaoEngine) Translate(ctx context.Context, req Request) Result {
	if !e.configured() {
		return failedResult(e.Name(), req, "youdao credentials not configured")
	}

	payload, failure := e.query(ctx, req)
	if failure != "" {
		return failedResult(e.Name(), req, failure)
	}

	return Result{
		SourceText:     req.Text,
		TranslatedText: strings.Join(payload.Translation, "\n"),
		FromLang:       req.FromLang,
		ToLang:         req.ToLang,
		EngineName:     e.Name(),
		IsWord:         IsSingleWord(req.Text),
	}
}

// LookupWord issues its own request so the dictionary ("basic") and web
// example blocks of the response can be harvested.
func (e *YoudaoEngine) LookupWord(ctx context.Context, word, fromLang, toLang string) Result {
	req := Request{Text: word, FromLang: fromLang, ToLang: toLang}
	if !e.configured() {
		return failedResult(e.Name(), req, "youdao credentials not configured")
	}

	payload, failure := e.query(ctx, req)
	if failure != "" {
		result := failedResult(e.Name(), req, failure)
		result.IsWord = true
		return result
	}

	detail := &WordDetail{
		Word:     word,
		Explains: []string{},
		Examples: youdaoExamples(payload.Web),
	}
	if payload.Basic != nil {
		detail.Phonetic = payload.Basic.Phonetic
		detail.UKPhonetic = payload.Basic.UKPhonetic
		detail.USPhonetic = payload.Basic.USPhonetic
		for _, explain := range payload.Basic.Explains {
			if explain = strings.TrimSpace(explain); explain != "" {
				detail.Explains = append(detail.Explains, explain)
			}
		}
	}

	return Result{
		SourceText:     word,
		TranslatedText: strings.Join(payload.Translation, "\n"),
		FromLang:       fromLang,
		ToLang:         toLang,
		EngineName:     e.Name(),
		IsWord:         true,
		WordDetail:     detail,
	}
}

func (e *YoudaoEngine) Close() error {
	closeRestClient(e.client)
	return nil
}

func (e *YoudaoEngine) configured() bool {
	return e.appKey != "" && e.appSecret != ""
}

// query performs one signed call. A non-empty failure string describes why the
// call did not produce a usable payload.
func (e *YoudaoEngine) query(ctx context.Context, req Request) (youdaoResponse, string) {
	salt := e.newSalt()
	curTime := strconv.FormatInt(e.now().Unix(), 10)

	resp, err := e.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"q":        req.Text,
			"from":     mapLanguageCode(youdaoLanguageCodes, req.FromLang),
			"to":       mapLanguageCode(youdaoLanguageCodes, req.ToLang),
			"appKey":   e.appKey,
			"salt":     salt,
			"sign":     youdaoSign(e.appKey, req.Text, salt, curTime, e.appSecret),
			"signType": youdaoSignType,
			"curtime":  curTime,
		}).
		Post(e.apiURL)
	if err != nil {
		return youdaoResponse{}, fmt.Sprintf("network request failed: %v", err)
	}
	if !isSuccessStatus(resp.StatusCode()) {
		return youdaoResponse{}, fmt.Sprintf("network request failed: status %d", resp.StatusCode())
	}

	var payload youdaoResponse
	if err := decodeJSON(resp.Body(), &payload); err != nil {
		return youdaoResponse{}, fmt.Sprintf("youdao response malformed: %v", err)
	}
	if code := providerCode(payload.ErrorCode); code != "" && code != "0" {
		return youdaoResponse{}, fmt.Sprintf("youdao api error %s", code)
	}
	return payload, ""
}

type youdaoResponse struct {
	ErrorCode   json.RawMessage `json:"errorCode"`
	Translation []string        `json:"translation"`
	Basic       *struct {
		Phonetic   string   `json:"phonetic"`
		UKPhonetic string   `json:"uk-phonetic"`
		USPhonetic string   `json:"us-phonetic"`
		Explains   []string `json:"explains"`
	} `json:"basic"`
	Web []youdaoWebEntry `json:"web"`
}

type youdaoWebEntry struct {
	Key   string   `json:"key"`
	Value []string `json:"value"`
}

func youdaoExamples(entries []youdaoWebEntry) []WordExample {
	examples := make([]WordExample, 0, maxWordExamples)
	for _, entry := range entries {
		if len(examples) == maxWordExamples {
			break
		}
		if entry.Key == "" || len(entry.Value) == 0 {
			continue
		}
		examples = append(examples, WordExample{
			Source: entry.Key,
			Target: strings.Join(entry.Value, "; "),
		})
	}
	return examples
}

// youdaoTruncate shortens text the way the v3 signature expects: inputs longer
// than 20 characters become first10 + length + last10.
func youdaoTruncate(text string) string {
	runes := []rune(text)
	if len(runes) <= youdaoTruncateLimit {
		return text
	}
	return string(runes[:youdaoTruncateKeepLen]) +
		strconv.Itoa(len(runes)) +
		string(runes[len(runes)-youdaoTruncateKeepLen:])
}

// youdaoSign returns lower-hex SHA256(appKey + truncate(text) + salt + curTime + appSecret).
func youdaoSign(appKey, text, salt, curTime, appSecret string) string {
	sum := sha256.Sum256([]byte(appKey + youdaoTruncate(text) + salt + curTime + appSecret))
	return hex.EncodeToString(sum[:])
}
