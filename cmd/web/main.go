package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eduterium/chatbot-web/internal/config"
	"github.com/eduterium/chatbot-web/internal/handler"
	chathandler "github.com/eduterium/chatbot-web/internal/handler/chat"
	livehandler "github.com/eduterium/chatbot-web/internal/handler/live"
	pagehandler "github.com/eduterium/chatbot-web/internal/handler/page"
	streamhandler "github.com/eduterium/chatbot-web/internal/handler/stream"
	"github.com/eduterium/chatbot-web/internal/transcript"
	"github.com/eduterium/chatbot-web/internal/upstream"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	client := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	transcripts := transcript.NewService(client)

	pages, err := pagehandler.New(client, transcripts, cfg.UI.BotLogoURL)
	if err != nil {
		log.Fatalf("failed to initialize page handler: %v", err)
	}

	router := handler.NewRouter(
		pages,
		chathandler.New(transcripts, client),
		streamhandler.New(transcripts, cfg.UI.RevealDelay),
		livehandler.New(transcripts, client, cfg.UI.RevealDelay),
	)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Eduterium chatbot frontend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
