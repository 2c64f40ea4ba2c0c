package gemini

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/akolanti/LectureRAG/internal/rag/llm"
	"github.com/akolanti/LectureRAG/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string, httpClient *http.Client) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey, httpClient)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string, httpClient *http.Client) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, HTTPClient: httpClient})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}
}

// Generate sends the composed prompt and classifies the outcome:
// usable text, a typed safety block, or no answer. Safety filtering
// runs at the provider's default thresholds.
func (c *llmClient) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.ModelContext},
		},
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(prompt),
		&genai.GenerateContentConfig{SystemInstruction: systemInstruction},
	)
	if err != nil {
		log.Error("Gemini call failed", "error", err)
		return "", err
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		reason := string(result.PromptFeedback.BlockReason)
		log.Warn("Gemini response blocked", "reason", reason)
		return "", &llm.BlockedError{Reason: reason}
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		log.Warn("Gemini returned no candidates or empty text")
		return "", llm.ErrNoAnswer
	}
	return text, nil
}

func closeClient(ctx context.Context, c *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	c.client = nil
	c.modelName = ""
}
