// @title           Lecture RAG API
// @version         1.0
// @description     Upload lecture documents and ask grounded questions against them.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/LectureRAG/internal/config"
	"github.com/akolanti/LectureRAG/internal/customHttpClient"
	"github.com/akolanti/LectureRAG/internal/data/catalog"
	"github.com/akolanti/LectureRAG/internal/handlers"
	"github.com/akolanti/LectureRAG/internal/rag"
	"github.com/akolanti/LectureRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/LectureRAG/internal/rag/llm/gemini"
	"github.com/akolanti/LectureRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/LectureRAG/internal/server"
	"github.com/akolanti/LectureRAG/pkg/logger_i"
	"github.com/joho/godotenv"
)

var listenAddr string

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, relying on the environment", "error", err)
	}
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	apiKey := config.Env("GOOGLE_API_KEY", "")
	httpClient := customHttpClient.GetPooledClient(config.LLMConnectionTimeout)

	vectorDB := qdrantDB.GetQuadrantClient(serviceContext)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, apiKey, httpClient)
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, apiKey, httpClient)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(vectorDB, llmProvider, embeddingService)

	var documentCatalog catalog.Catalog = catalog.InitInMemoryCatalog()
	if redisCatalog := catalog.GetRedisCatalog(serviceContext); redisCatalog != nil {
		documentCatalog = redisCatalog
	} else {
		logger.Error("Redis catalog is offline, falling back to in-memory")
	}

	handler := handlers.NewHandler(ragService, documentCatalog, 3)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, handler)

	<-stopExecution
	logger.Info("Server stopped")
}
