package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/akolanti/LectureRAG/internal/metrics"
	"github.com/akolanti/LectureRAG/internal/rag/llm"
)

// compose turns retrieved context plus the query into a grounded
// answer: build the prompt, call the provider under the retry policy,
// then attach the authoritative source list derived from the context
// itself (never parsed out of the model's text).
func (s *service) compose(ctx context.Context, query string, matches []docModel.Match) (docModel.Answer, error) {
	prompt := buildPrompt(query, matches)

	text, err := s.generateWithRetry(ctx, prompt)
	if err != nil {
		return docModel.Answer{}, err
	}

	return docModel.Answer{
		Response: strings.TrimSpace(text),
		Sources:  collectSources(matches),
	}, nil
}

// generateWithRetry is a bounded-attempt loop: up to LLMMaxAttempts
// calls, exponential backoff starting at LLMBackoffInitial, and only
// transient failures consume the budget.
func (s *service) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	backoff := config.LLMBackoffInitial
	var lastErr error
	for attempt := 1; attempt <= config.LLMMaxAttempts; attempt++ {
		text, err := s.llmProvider.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !llm.IsTransient(err) {
			log.Error("LLM call failed terminally", "attempt", attempt, "error", err)
			return "", err
		}

		log.Warn("Transient LLM failure", "attempt", attempt, "error", err)
		if attempt < config.LLMMaxAttempts {
			s.sleep(backoff)
			backoff *= 2
		}
	}
	return "", fmt.Errorf("llm generation failed after %d attempts: %w", config.LLMMaxAttempts, lastErr)
}

// buildPrompt concatenates the retrieved chunks in retrieval order,
// each under a citation header. With no context it says so explicitly,
// steering the model toward "not found" instead of a guess.
func buildPrompt(query string, matches []docModel.Match) string {
	var b strings.Builder
	b.WriteString("Reference material:\n")

	if len(matches) == 0 {
		b.WriteString("No reference material is available.\n")
	} else {
		for i, m := range matches {
			b.WriteString(fmt.Sprintf("\n--- Reference %d (source: %s", i+1, sourceLabel(m.Meta)))
			b.WriteString(") ---\n")
			b.WriteString(m.Text)
			b.WriteString("\n---\n")
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

func sourceLabel(meta docModel.ChunkMeta) string {
	source := meta.Source
	if source == "" {
		source = "unknown"
	}
	if meta.Page != nil {
		// stored 0-based, shown 1-based for humans
		return fmt.Sprintf("%s (p.%d)", source, *meta.Page+1)
	}
	return source
}

// collectSources derives the source list from the context actually
// passed in: deduplicated, ascending, entries without a source skipped.
func collectSources(matches []docModel.Match) []string {
	seen := make(map[string]bool)
	sources := []string{}
	for _, m := range matches {
		if m.Meta.Source == "" || seen[m.Meta.Source] {
			continue
		}
		seen[m.Meta.Source] = true
		sources = append(sources, m.Meta.Source)
	}
	sort.Strings(sources)
	return sources
}

func isBlankQuery(query string) bool {
	return strings.TrimSpace(query) == ""
}
