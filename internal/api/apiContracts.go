package api

import "github.com/akolanti/LectureRAG/internal/domain/docModel"

type ChatRequest struct {
	Query string `json:"query" validate:"required"`
	K     int    `json:"k,omitempty"` //1..10, defaults to 3
}

type ChatResponse struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

type UploadResponse struct {
	Status      string `json:"status"`
	File        string `json:"file"`
	ChunksAdded int    `json:"chunks_added"`
	Message     string `json:"message,omitempty"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type DeleteResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	PriorCount int    `json:"prior_count"`
}

type DocumentsResponse struct {
	Documents []docModel.CatalogEntry `json:"documents"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	Initialized  bool   `json:"initialized"`
	Dependencies int    `json:"dependencies"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
}
