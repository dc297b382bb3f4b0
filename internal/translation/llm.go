package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	llmRequestTimeout = 30 * time.Second
	llmTemperature    = 0.3

	llmSystemPrompt = "You are a professional translator. " +
		"Translate the user's text from %s to %s. " +
		"Output ONLY the translated text, nothing else."
)

// LLMEngine translates text by calling an OpenAI-compatible chat completions endpoint.
type LLMEngine struct {
	endpointURL string
	apiKey      string
	model       string
	client      *resty.Client
}

// NewLLMEngine builds an engine for apiURL (the base URL; /chat/completions is appended).
func NewLLMEngine(apiURL, apiKey, model string) *LLMEngine {
	return &LLMEngine{
		endpointURL: chatCompletionsURL(apiURL),
		apiKey:      strings.TrimSpace(apiKey),
		model:       strings.TrimSpace(model),
		client:      resty.New().SetTimeout(llmRequestTimeout),
	}
}

func (e *LLMEngine) Name() string {
	return "llm"
}

// ModelName returns the configured model identifier.
func (e *LLMEngine) ModelName() string {
	if e == nil {
		return ""
	}
	return e.model
}

func (e *LLMEngine) Translate(ctx context.Context, req Request) Result {
	if e.endpointURL == "" || e.apiKey == "" || e.model == "" {
		return failedResult(e.Name(), req, "llm api not configured (api url, api key and model name are required)")
	}

	system := fmt.Sprintf(llmSystemPrompt, LanguageDisplayName(req.FromLang), LanguageDisplayName(req.ToLang))
	translated, failure := e.chat(ctx, system, req.Text)
	if failure != "" {
		return failedResult(e.Name(), req, failure)
	}

	return Result{
		SourceText:     req.Text,
		TranslatedText: translated,
		FromLang:       req.FromLang,
		ToLang:         req.ToLang,
		EngineName:     e.Name(),
		IsWord:         IsSingleWord(req.Text),
	}
}

// LookupWord translates word and wraps the translation as its only explanation;
// chat completions carry no structured lexical data.
func (e *LLMEngine) LookupWord(ctx context.Context, word, fromLang, toLang string) Result {
	result := e.Translate(ctx, Request{Text: word, FromLang: fromLang, ToLang: toLang})
	return withSingleExplain(result, word)
}

func (e *LLMEngine) Close() error {
	closeRestClient(e.client)
	return nil
}

func (e *LLMEngine) chat(ctx context.Context, system, userText string) (string, string) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetAuthToken(e.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{
			Model: e.model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: userText},
			},
			Temperature: llmTemperature,
		}).
		Post(e.endpointURL)
	if err != nil {
		return "", fmt.Sprintf("llm request failed: %v", err)
	}

	body := resp.Body()
	if !isSuccessStatus(resp.StatusCode()) {
		var errPayload chatErrorResponse
		if unmarshalErr := json.Unmarshal(body, &errPayload); unmarshalErr == nil {
			if msg := strings.TrimSpace(errPayload.Error.Message); msg != "" {
				return "", fmt.Sprintf("llm request failed: status %d: %s", resp.StatusCode(), msg)
			}
		}
		return "", fmt.Sprintf("llm request failed: status %d: %s", resp.StatusCode(), strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Sprintf("llm response malformed: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", "llm response malformed: missing choices"
	}

	message := parsed.Choices[0].Message
	if message == nil || message.Content == nil {
		return "", "llm response malformed: missing message content"
	}
	return strings.TrimSpace(*message.Content), ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// chatCompletionsURL appends /chat/completions to the configured base URL
// unless it is already there. An empty base stays empty so the engine reports
// itself as unconfigured.
func chatCompletionsURL(apiURL string) string {
	base := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if base == "" {
		return ""
	}
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}
