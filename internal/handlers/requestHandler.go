package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/akolanti/LectureRAG/internal/api"
	"github.com/akolanti/LectureRAG/internal/data/catalog"
	"github.com/akolanti/LectureRAG/internal/domain/docModel"
	"github.com/akolanti/LectureRAG/internal/metrics"
	"github.com/akolanti/LectureRAG/internal/rag"
	"github.com/akolanti/LectureRAG/internal/rag/llm"
	"github.com/akolanti/LectureRAG/pkg/logger_i"
)

var logRH *logger_i.Logger

func init() {
	logRH = logger_i.NewLogger("handlers")
}

// Handler holds every dependency a request needs. It is built once at
// startup and injected into the router, no package level service state.
type Handler struct {
	ragService rag.Service
	catalog    catalog.Catalog
	depCount   int
}

func NewHandler(ragService rag.Service, documentCatalog catalog.Catalog, depCount int) *Handler {
	return &Handler{
		ragService: ragService,
		catalog:    documentCatalog,
		depCount:   depCount,
	}
}

// HealthHandler godoc
// @Summary      Liveness and readiness check
// @Description  Reports whether the service and its dependencies are initialized.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{
		Status:       "ok",
		Initialized:  h.ragService != nil,
		Dependencies: h.depCount,
	})
}

// ChatHandler godoc
// @Summary      Answer a question from the indexed documents
// @Description  Embeds the query, retrieves the k nearest chunks and composes a grounded answer with source citations.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest   true  "Question and optional result count (1-10)"
// @Success      200      {object}  api.ChatResponse  "Grounded answer with sources"
// @Failure      400      {object}  api.ErrorResponse "Empty query or k out of range"
// @Failure      422      {object}  api.ErrorResponse "Answer blocked by the safety filter"
// @Failure      502      {object}  api.ErrorResponse "Generation failed after retries"
// @Router       /api/chat [post]
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader :", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Chat Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if requestData.K < 0 || requestData.K > 10 {
		WriteErrorResponse(w, http.StatusBadRequest, "k must be between 1 and 10")
		return
	}

	answer, err := h.ragService.Chat(r.Context(), requestData.Query, requestData.K)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	writeJsonResponse(w, http.StatusOK, api.ChatResponse{
		Response: answer.Response,
		Sources:  answer.Sources,
	})
}

func (h *Handler) writeChatError(w http.ResponseWriter, err error) {
	var blocked *llm.BlockedError
	switch {
	case errors.Is(err, rag.ErrEmptyQuery):
		WriteErrorResponse(w, http.StatusBadRequest, "query must not be empty")
	case errors.As(err, &blocked):
		logRH.Warn("Answer blocked by safety filter", "reason", blocked.Reason)
		WriteErrorResponse(w, http.StatusUnprocessableEntity, "answer blocked by safety filter: "+blocked.Reason)
	default:
		logRH.Error("Chat failed", "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "answer generation failed")
	}
}

// UploadHandler godoc
// @Summary      Upload a document for indexing
// @Description  Receives a PDF, DOCX or TXT file via multipart/form-data, chunks and embeds it, and upserts the chunks into the vector store. Re-uploading the same file replaces its chunks in place.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file  true  "The PDF, DOCX or TXT file to upload"
// @Success      200  {object}  api.UploadResponse "Document indexed"
// @Failure      400  {object}  api.ErrorResponse  "Missing file, unsupported type or no extractable content"
// @Failure      500  {object}  api.ErrorResponse  "Storage or indexing error"
// @Router       /api/upload [post]
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, errString)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	filename := docModel.SanitizeSource(filepath.Base(fileMetadata.Filename))
	if filename == "" || filename == "." {
		WriteErrorResponse(w, http.StatusBadRequest, "Missing file name")
		return
	}
	if !isSupportedExtension(filename) {
		WriteErrorResponse(w, http.StatusBadRequest, "Unsupported file type, expected .pdf, .docx or .txt")
		return
	}

	// The scratch file keeps the client's base name so chunk identities
	// stay stable across re-uploads of the same document.
	tempFilePath := filepath.Join(targetDir, filename)
	if err := saveScratchFile(tempFilePath, fileReader); err != nil {
		logRH.Error("Couldn't persist upload :", "err", err, "file", filename)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	chunksAdded, err := h.ragService.IngestDocument(r.Context(), tempFilePath)
	if err != nil {
		if errors.Is(err, rag.ErrNoChunks) {
			WriteErrorResponse(w, http.StatusBadRequest, "No text could be extracted from the document")
			return
		}
		logRH.Error("Ingestion failed", "error", err, "file", filename)
		WriteErrorResponse(w, http.StatusInternalServerError, "Indexing error")
		return
	}

	h.recordUpload(r, filename, chunksAdded)

	writeJsonResponse(w, http.StatusOK, api.UploadResponse{
		Status:      "success",
		File:        filename,
		ChunksAdded: chunksAdded,
	})
}

func (h *Handler) recordUpload(r *http.Request, filename string, chunksAdded int) {
	metrics.AddDocumentIngested()
	if h.catalog == nil {
		return
	}
	entry := docModel.CatalogEntry{
		Source:     filename,
		ChunkCount: chunksAdded,
		IngestedAt: time.Now().UTC(),
	}
	if err := h.catalog.Record(r.Context(), entry); err != nil {
		//catalog is best effort, the document is already indexed
		logRH.Warn("Couldn't record catalog entry", "error", err, "file", filename)
	}
}

// CountHandler godoc
// @Summary      Number of indexed chunks
// @Description  Returns how many chunks are currently stored in the vector collection. Returns 0 when the collection does not exist yet.
// @Tags         Vectorstore
// @Produce      json
// @Success      200  {object}  api.CountResponse
// @Router       /api/vectorstore/count [get]
func (h *Handler) CountHandler(w http.ResponseWriter, r *http.Request) {
	count, err := h.ragService.Count(r.Context())
	if err != nil {
		//absent or unreachable store reads as empty
		logRH.Warn("Count failed, reporting empty store", "error", err)
		count = 0
	}
	writeJsonResponse(w, http.StatusOK, api.CountResponse{Count: count})
}

// DeleteAllHandler godoc
// @Summary      Drop every indexed chunk
// @Description  Deletes the whole vector collection and clears the document catalog.
// @Tags         Vectorstore
// @Produce      json
// @Success      200  {object}  api.DeleteResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/vectorstore/delete_all [delete]
func (h *Handler) DeleteAllHandler(w http.ResponseWriter, r *http.Request) {
	priorCount, err := h.ragService.DeleteAll(r.Context())
	if err != nil {
		logRH.Error("Delete all failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Could not delete the collection")
		return
	}

	if h.catalog != nil {
		if err := h.catalog.Clear(r.Context()); err != nil {
			logRH.Warn("Couldn't clear catalog", "error", err)
		}
	}

	writeJsonResponse(w, http.StatusOK, api.DeleteResponse{
		Status:     "success",
		Message:    "collection deleted",
		PriorCount: priorCount,
	})
}

// DocumentsHandler godoc
// @Summary      List ingested documents
// @Description  Returns the catalog of documents ingested so far with their chunk counts.
// @Tags         Ingestion
// @Produce      json
// @Success      200  {object}  api.DocumentsResponse
// @Router       /api/documents [get]
func (h *Handler) DocumentsHandler(w http.ResponseWriter, r *http.Request) {
	entries := []docModel.CatalogEntry{}
	if h.catalog != nil {
		listed, err := h.catalog.List(r.Context())
		if err != nil {
			logRH.Warn("Couldn't list catalog", "error", err)
		} else {
			entries = listed
		}
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentsResponse{Documents: entries})
}
