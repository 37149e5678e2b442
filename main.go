package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	gemini "github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	ollamaef "github.com/amikos-tech/chroma-go/pkg/embeddings/ollama"
	openai "github.com/amikos-tech/chroma-go/pkg/embeddings/openai"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Pushpachoudary/Qurey-Stream/docstore"
	"github.com/Pushpachoudary/Qurey-Stream/llm"
	"github.com/Pushpachoudary/Qurey-Stream/readers"
	"github.com/Pushpachoudary/Qurey-Stream/rerank"
)

func createEmbeddingFunction(cfg *Config) (embeddings.EmbeddingFunction, error) {
	if cfg.OpenAI != nil {
		apiKey := cfg.OpenAI.ApiKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}

		ef, err := openai.NewOpenAIEmbeddingFunction(
			apiKey,
			openai.WithModel(openai.EmbeddingModel(cfg.OpenAI.Model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedding function: %w", err)
		}

		return ef, nil
	}

	if cfg.Gemini != nil {
		apiKey := cfg.Gemini.ApiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}

		ef, err := gemini.NewGeminiEmbeddingFunction(
			gemini.WithAPIKey(apiKey),
			gemini.WithDefaultModel(embeddings.EmbeddingModel(cfg.Gemini.Model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
		}

		return ef, nil
	}

	ef, err := ollamaef.NewOllamaEmbeddingFunction(
		ollamaef.WithBaseURL(cfg.Ollama.Addr+"/api/embeddings"),
		ollamaef.WithModel(embeddings.EmbeddingModel(cfg.Ollama.EmbeddingModel)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama embedding function: %w", err)
	}

	return ef, nil
}

func initDocStore(cfg *Config, reset bool) (*docstore.ChromaStore, error) {
	ef, err := createEmbeddingFunction(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding function: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := docstore.NewChromaStore(ctx, docstore.ChromaStoreConfig{
		BaseURL:       cfg.ChromaAddr,
		EmbeddingFunc: ef,
		Results:       cfg.Results,
		Reset:         reset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Chroma doc store: %w", err)
	}

	return store, nil
}

func main() {
	reset := flag.Bool("reset", false, "Reinitialize the database from scratch if set")
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file for the server")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := readConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %s", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, nil))

	store, err := initDocStore(cfg, *reset)
	if err != nil {
		log.Fatal(err)
	}

	generator, err := llm.NewGenerator(cfg.Ollama.ChatModel, cfg.Ollama.Addr)
	if err != nil {
		log.Fatal(err)
	}

	fileReaders := []PageReader{
		&readers.PdfFileReader{},
		&readers.TxtFileReader{},
		&readers.UniversalFileReader{},
	}

	pipeline := &Pipeline{
		log:      logger,
		store:    store,
		chunker:  NewRecursiveSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		reranker: rerank.NewClient(cfg.Reranker.Addr, cfg.Reranker.Model),
		llm:      generator,
		readers:  fileReaders,
		results:  cfg.Results,
		topK:     cfg.TopK,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DocRoot != "" {
		reg := DocRegistry{
			log:              logger,
			root:             cfg.DocRoot,
			mergeEventsDelay: time.Duration(cfg.MergeEventsMs) * time.Millisecond,
			store:            store,
			ingester:         pipeline,
			readers:          fileReaders,
		}

		go func() {
			if err := reg.Sync(ctx); err != nil {
				log.Fatal(err)
			}

			if err := reg.Watch(ctx); err != nil {
				log.Fatal(err)
			}
		}()
	}

	if cfg.MCPAddr != "" {
		srv := NewRagServer(store, pipeline, cfg.Results)
		sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", cfg.MCPAddr)))

		go func() {
			if err := sse.Start(cfg.MCPAddr); err != nil {
				log.Fatal(err)
			}
		}()
	}

	api := NewHTTPServer(pipeline, pipeline, logger)
	log.Println(api.Run(cfg.ServerAddr))
}
