// Package app wires configuration, storage, the generation client, and the
// HTTP server together.
package app

import (
	"context"
	"fmt"
	"log"

	"pdfassist/internal/config"
	"pdfassist/internal/llm"
	"pdfassist/internal/server"
	"pdfassist/internal/session"
	"pdfassist/internal/store"
)

type App struct {
	server *server.Server
	llm    llm.StreamClient
	recent *store.RecentStore
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return nil, err
	}
	recent := store.NewRecentStoreFromEnv(cfg.Storage.RecentDSN, blobs)

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client = llm.WithLogging(client, log.Default())

	sessions := session.NewManager(session.ManagerConfig{
		LLM:             client,
		Blobs:           blobs,
		Recent:          recent,
		Logger:          log.Default(),
		DefaultLanguage: cfg.Language,
	})

	api := server.NewAPI(sessions, blobs, log.Default(), cfg)
	srv := server.New(cfg.Port, api)

	return &App{
		server: srv,
		llm:    client,
		recent: recent,
	}, nil
}

func newBlobStore(cfg *config.Config) (store.BlobStore, error) {
	if cfg.Storage.S3Enabled {
		s3, err := store.NewS3Store(store.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 file cache: %w", err)
		}
		// Page renders and recent-list re-opens re-read the same objects;
		// keep a small read cache in front of S3.
		return store.NewCachedStore(s3)
	}
	disk, err := store.NewDiskStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init disk file cache: %w", err)
	}
	return disk, nil
}

// newLLMClient prefers Gemini when a key is configured and falls back to
// the scripted offline client otherwise, so the server stays usable in
// development without credentials.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.StreamClient, error) {
	if cfg.Gemini.APIKey == "" {
		log.Printf("GEMINI_API_KEY not set; using offline generation client")
		return &llm.FakeClient{Fragments: []string{"Generation is not configured on this server."}}, nil
	}
	client, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return client, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.llm.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if cerr := a.recent.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
