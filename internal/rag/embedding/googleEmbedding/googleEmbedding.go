package googleEmbedding

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/akolanti/LectureRAG/internal/rag/embedding"
	"github.com/akolanti/LectureRAG/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskTypePassage = "RETRIEVAL_DOCUMENT"
	taskTypeQuery   = "RETRIEVAL_QUERY"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

// embedFunc is the seam between the public embedding modes and the
// genai transport; tests swap it to observe the task type sent.
type embedFunc func(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error)

type client struct {
	genAi *genai.Client
	model string
	embed embedFunc
}

func newClientHolder(genAi *genai.Client, model string) *client {
	c := &client{genAi: genAi, model: model}
	c.embed = c.doCall
	return c
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string, httpClient *http.Client) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey, httpClient)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return newClientHolder(embeddingClient.genAi, embeddingClient.model)
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string, httpClient *http.Client) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, HTTPClient: httpClient})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
	}
	if c != nil {
		embeddingClient = newClientHolder(c, modelName)
		logger.Info("Google Embedding client created", "model", modelName)
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func (c *client) EmbedPassages(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.embed(ctx, getContent(texts), taskTypePassage)
	if err != nil {
		if doRetry(err, log) {
			log.Debug("Retrying passage embedding", "backoff", config.EmbedRetryBackoff)
			time.Sleep(config.EmbedRetryBackoff)
			res, err = c.embed(ctx, getContent(texts), taskTypePassage)
		}
		if err != nil {
			log.Error("Error getting Embeddings from Google", "error", err)
			return nil, err
		}
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		vectors = append(vectors, normalize(r.Values))
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(vectors))
	}
	return vectors, nil
}

func (c *client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	res, err := c.embed(ctx, genai.Text(text), taskTypeQuery)
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	if len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("model returned no embedding for query")
	}
	return normalize(res.Embeddings[0].Values), nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             taskType,
	})
}
