package qdrantDB

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/akolanti/LectureRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj           *qdrant.Client
	collectionName string
}

func GetQuadrantClient(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj:           quadrantInstance,
		collectionName: config.CollectionName,
	}
}

func newClient() *qdrant.Client {
	host := config.Env("QDRANT_HOST", config.QdrantHost)
	port := config.EnvInt("QDRANT_PORT", config.QdrantGrpcPort)

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	if err := ensureCollection(context.Background(), client, config.CollectionName); err != nil {
		logger.Error("could not create collection: ", "collectionName", config.CollectionName, "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
}

func (db *ClientHolder) Upsert(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	if err := ensureCollection(ctx, db.QObj, db.collectionName); err != nil {
		return fmt.Errorf("qdrant collection unavailable: %w", err)
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		payload := map[string]any{
			"content":  chunk.Text,
			"source":   chunk.Meta.Source,
			"chunk_id": chunk.Identity,
		}
		if chunk.Meta.Page != nil {
			payload["page"] = int64(*chunk.Meta.Page)
		}
		if chunk.Meta.StartIndex != nil {
			payload["start_index"] = int64(*chunk.Meta.StartIndex)
		}

		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.PointID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, queryVector []float32, k int) ([]docModel.Match, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	exists, err := db.QObj.CollectionExists(ctx, db.collectionName)
	if err != nil {
		return nil, fmt.Errorf("qdrant collection check failed: %w", err)
	}
	if !exists {
		loggr.Debug("Collection does not exist yet, returning no matches")
		return nil, nil
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	matches := make([]docModel.Match, 0, len(result))
	for _, hit := range result {
		meta := docModel.ChunkMeta{
			Source: hit.Payload["source"].GetStringValue(),
		}
		if v, ok := hit.Payload["page"]; ok {
			page := int(v.GetIntegerValue())
			meta.Page = &page
		}
		if v, ok := hit.Payload["start_index"]; ok {
			start := int(v.GetIntegerValue())
			meta.StartIndex = &start
		}

		matches = append(matches, docModel.Match{
			Text: hit.Payload["content"].GetStringValue(),
			Meta: meta,
			// cosine similarity score to cosine distance, ascending = nearest first
			Distance: 1 - hit.Score,
		})
	}

	loggr.Debug("Vector search complete", "requested", k, "returned", len(matches))
	return matches, nil
}

func (db *ClientHolder) Count(ctx context.Context) (int, error) {
	exists, err := db.QObj.CollectionExists(ctx, db.collectionName)
	if err != nil {
		return 0, fmt.Errorf("qdrant collection check failed: %w", err)
	}
	if !exists {
		return 0, nil
	}

	count, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: db.collectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return int(count), nil
}

func (db *ClientHolder) DropAll(ctx context.Context) error {
	logger.Warn("Deleting entire collection", "collectionName", db.collectionName)
	if err := db.QObj.DeleteCollection(ctx, db.collectionName); err != nil {
		return fmt.Errorf("qdrant collection delete failed: %w", err)
	}
	return nil
}

func ensureCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
