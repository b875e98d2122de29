package main

import (
	"fmt"
	"os"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/ai"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/chunker"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/config"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/embedder"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/extract"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/rag"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/scrape"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/sessions"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/sources"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/vector"
)

// App wires the pipeline together from configuration. Components are built
// eagerly except the embedder, which stays lazy so commands that never embed
// work without provider credentials.
type App struct {
	Config   *config.Config
	Service  *rag.Service
	Ingestor *rag.Ingestor
	Scraper  *scrape.Scraper
	Sessions *sessions.Store
	Loader   *sources.Loader

	conversation *rag.Conversation
}

func newApp(cfg *config.Config) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := vector.Open(cfg.VectorDir(), cfg.Vector.Collection)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	emb := buildEmbedder(cfg)
	service := rag.NewService(store, emb)
	service.SetRetrievalParams(rag.RetrievalParams{
		TopK:             cfg.Retrieval.TopK,
		ScoreThreshold:   float32(cfg.Retrieval.ScoreThreshold),
		MaxContextLength: cfg.Retrieval.MaxContextLength,
	})

	ch := chunker.NewSentence(cfg.Chunking.MinSize, cfg.Chunking.MaxSize, cfg.Chunking.OverlapRatio)
	ingestor := rag.NewIngestor(service, ch)
	ingestor.RegisterExtractor(rag.DocTypeText, extract.NewPlain())
	ingestor.RegisterExtractor(rag.DocTypeWeb, extract.NewPlain())

	sessStore, err := sessions.NewStore(cfg.SessionsDBPath())
	if err != nil {
		return nil, fmt.Errorf("open sessions store: %w", err)
	}

	scraper := scrape.New(nil)
	return &App{
		Config:   cfg,
		Service:  service,
		Ingestor: ingestor,
		Scraper:  scraper,
		Sessions: sessStore,
		Loader:   sources.NewLoader(ingestor, scraper, cfg.SyncStatePath()),
	}, nil
}

// Conversation builds the chat orchestrator on first use. Commands that
// never chat stay usable without provider credentials.
func (a *App) Conversation() (*rag.Conversation, error) {
	if a.conversation != nil {
		return a.conversation, nil
	}
	provider, err := buildProvider(a.Config)
	if err != nil {
		return nil, err
	}
	a.conversation = rag.NewConversation(a.Service, provider, a.Sessions)
	return a.conversation, nil
}

func (a *App) Close() {
	if a.Sessions != nil {
		a.Sessions.Close()
	}
}

func buildEmbedder(cfg *config.Config) embedder.Embedder {
	if cfg.Embedding.Provider == "openai" {
		return embedder.NewLazy("openai", func() (embedder.Embedder, error) {
			key := cfg.Embedding.OpenAI.APIKey
			if key == "" {
				return nil, fmt.Errorf("openai embedding requires an api key")
			}
			return embedder.NewOpenAI(key, cfg.Embedding.OpenAI.Model, cfg.Embedding.Dims), nil
		})
	}
	return embedder.NewHash(cfg.Embedding.Dims)
}

func buildProvider(cfg *config.Config) (ai.Provider, error) {
	if cfg.AI.Provider == "mock" {
		return ai.NewMock("mock"), nil
	}
	provider, err := ai.NewGemini(cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		return nil, fmt.Errorf("configure gemini: %w", err)
	}
	return provider, nil
}
