package translation

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaiduAPIURL is the Baidu general translation endpoint.
	DefaultBaiduAPIURL = "https://fanyi-api.baidu.com/api/trans/vip/translate"

	restRequestTimeout = 10 * time.Second
	baiduSaltDigits    = 10
)

// BaiduEngine calls the Baidu translation API, signing each request with MD5.
type BaiduEngine struct {
	appID     string
	secretKey string
	apiURL    string
	client    *resty.Client
	newSalt   func() string
}

func NewBaiduEngine(appID, secretKey, apiURL string) *BaiduEngine {
	endpoint := strings.TrimSpace(apiURL)
	if endpoint == "" {
		endpoint = DefaultBaiduAPIURL
	}
	return &BaiduEngine{
		appID:     strings.TrimSpace(appID),
		secretKey: strings.TrimSpace(secretKey),
		apiURL:    endpoint,
		client:    resty.New().SetTimeout(restRequestTimeout),
		newSalt:   randomDigits,
	}
}

func (e *BaiduEngine) Name() string {
	return "baidu"
}

func (e *BaiduEngine) Translate(ctx context.Context, req Request) Result {
	if e.appID == "" || e.secretKey == "" {
		return failedResult(e.Name(), req, "baidu credentials not configured")
	}

	salt := e.newSalt()
	resp, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     req.Text,
			"from":  mapLanguageCode(baiduLanguageCodes, req.FromLang),
			"to":    mapLanguageCode(baiduLanguageCodes, req.ToLang),
			"appid": e.appID,
			"salt":  salt,
			"sign":  baiduSign(e.appID, req.Text, salt, e.secretKey),
		}).
		Get(e.apiURL)
	if err != nil {
		return failedResult(e.Name(), req, fmt.Sprintf("network request failed: %v", err))
	}
	if !isSuccessStatus(resp.StatusCode()) {
		return failedResult(e.Name(), req, fmt.Sprintf("network request failed: status %d", resp.StatusCode()))
	}

	var payload baiduResponse
	if err := decodeJSON(resp.Body(), &payload); err != nil {
		return failedResult(e.Name(), req, fmt.Sprintf("baidu response malformed: %v", err))
	}
	if hasProviderCode(payload.ErrorCode) {
		code := providerCode(payload.ErrorCode)
		if code == "" {
			code = "unknown"
		}
		return failedResult(e.Name(), req, fmt.Sprintf("baidu api error %s: %s", code, payload.ErrorMsg))
	}

	parts := make([]string, 0, len(payload.TransResult))
	for _, item := range payload.TransResult {
		parts = append(parts, item.Dst)
	}

	fromLang := req.FromLang
	if payload.From != "" {
		fromLang = payload.From
	}
	toLang := req.ToLang
	if payload.To != "" {
		toLang = payload.To
	}

	return Result{
		SourceText:     req.Text,
		TranslatedText: strings.Join(parts, "\n"),
		FromLang:       fromLang,
		ToLang:         toLang,
		EngineName:     e.Name(),
		IsWord:         IsSingleWord(req.Text),
	}
}

// LookupWord translates word and wraps the translation as its only explanation;
// Baidu returns no phonetics or examples.
func (e *BaiduEngine) LookupWord(ctx context.Context, word, fromLang, toLang string) Result {
	result := e.Translate(ctx, Request{Text: word, FromLang: fromLang, ToLang: toLang})
	return withSingleExplain(result, word)
}

func (e *BaiduEngine) Close() error {
	closeRestClient(e.client)
	return nil
}

type baiduResponse struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	ErrorCode   json.RawMessage `json:"error_code"`
	ErrorMsg    string          `json:"error_msg"`
	TransResult []struct {
		Src string `json:"src"`
		Dst string `json:"dst"`
	} `json:"trans_result"`
}

// baiduSign returns lower-hex MD5(appID + text + salt + secretKey).
func baiduSign(appID, text, salt, secretKey string) string {
	sum := md5.Sum([]byte(appID + text + salt + secretKey))
	return hex.EncodeToString(sum[:])
}

func randomDigits() string {
	var b strings.Builder
	b.Grow(baiduSaltDigits)
	for range baiduSaltDigits {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

func isSuccessStatus(code int) bool {
	return code >= 200 && code < 300
}

func decodeJSON(body []byte, dest any) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	return decoder.Decode(dest)
}

// hasProviderCode reports whether the response carried an error code at all.
func hasProviderCode(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// providerCode renders a provider error code that may arrive as a JSON string or number.
// An absent or null code yields "".
func providerCode(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return string(trimmed)
}

func closeRestClient(client *resty.Client) {
	if client == nil {
		return
	}
	client.GetClient().CloseIdleConnections()
}
