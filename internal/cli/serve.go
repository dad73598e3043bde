package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docchat/config"
	"docchat/internal/adapter/blob"
	"docchat/internal/adapter/chunker"
	"docchat/internal/adapter/docstore"
	"docchat/internal/adapter/embedding"
	"docchat/internal/adapter/extract"
	"docchat/internal/adapter/llm"
	"docchat/internal/port"
	"docchat/internal/server"
	"docchat/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the document chat HTTP server.

The server exposes upload, chat, document, and transcript endpoints. With no
embedding provider configured it still works, falling back to flat document
context. With no storage path configured documents live in memory only.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	app, cleanup, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("docchat listening on %s\n", cfg.Server.Addr)
	return app.server.Start(cfg.Server.Addr)
}

// app bundles the wired components the commands need.
type app struct {
	server   *server.Server
	ingestor *usecase.Ingestor
}

// buildApp wires the configured adapters. The returned cleanup closes the
// blob store, if any.
func buildApp(cfg *config.Config) (*app, func(), error) {
	var blobStore port.BlobStore
	cleanup := func() {}
	if cfg.Storage.Path != "" {
		bs, err := blob.NewBoltStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open storage: %w", err)
		}
		blobStore = bs
		cleanup = func() { bs.Close() }
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	var chatModel port.ChatModel
	if cfg.Chat.APIKeyEnv != "" {
		chatModel, err = llm.NewOpenAIChatFromEnv(cfg.Chat.APIKeyEnv, cfg.Chat.BaseURL, cfg.Chat.Model)
		if err != nil {
			fmt.Printf("Warning: chat provider unavailable (%v), using mock replies\n", err)
			chatModel = llm.NewMockChat()
		}
	} else {
		chatModel = llm.NewMockChat()
	}

	docs := docstore.New(blobStore)
	ingestor := usecase.NewIngestor(
		chunker.NewWindowChunker(cfg.Chunk.Size, cfg.Chunk.Overlap),
		embedder,
		docs,
		extract.New(),
	)
	contexts := usecase.NewContextBuilder(docs, embedder, cfg.Retrieve.TopK, cfg.Retrieve.MaxContextChars)
	chatter := usecase.NewChatter(contexts, chatModel)
	chats := usecase.NewTranscriptStore(blobStore)

	return &app{
		server:   server.New(ingestor, chatter, docs, chats, cfg.MaxUploadBytes()),
		ingestor: ingestor,
	}, cleanup, nil
}

// buildEmbedder picks the embedding provider from config. An empty provider
// means embeddings are off and retrieval stays flat.
func buildEmbedder(cfg *config.Config) (*embedding.Capability, error) {
	var provider port.Embedder
	var err error

	switch cfg.Embedding.Provider {
	case "":
		return embedding.NewCapability(nil), nil
	case "openai":
		provider, err = embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BatchSize)
	case "google":
		provider, err = embedding.NewGoogleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BatchSize)
	case "ollama":
		provider, err = embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.BatchSize)
	case "compatible":
		provider, err = embedding.NewOpenAICompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.BatchSize)
	case "mock":
		provider = embedding.NewMockEmbedder(256)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
	if err != nil {
		fmt.Printf("Warning: embedding provider unavailable (%v), retrieval will be flat\n", err)
		return embedding.NewCapability(nil), nil
	}
	return embedding.NewCapability(provider), nil
}
