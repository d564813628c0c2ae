package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"Linkfeed/internal/config"
	"Linkfeed/internal/core/feedsync"
	"Linkfeed/internal/core/feedview"
	"Linkfeed/internal/core/identity"
	"Linkfeed/internal/core/search"
	"Linkfeed/internal/db/sqlite"
	"Linkfeed/internal/graphql"
	"Linkfeed/internal/store"
	"Linkfeed/internal/web"
)

func main() {
	cfg := config.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(ctx, cfg.StateDBPath)
	if err != nil {
		log.Fatal("Failed to open state database: ", err)
	}
	defer db.Close()

	log.Println("State database ready:", cfg.StateDBPath)

	credentials := sqlite.NewCredentialRepository(db)
	gate := identity.NewGate(credentials, logger)

	cache, err := store.NewFeedCache(cfg.CacheSize, logger)
	if err != nil {
		log.Fatal("Failed to create feed cache: ", err)
	}
	synchronizer := feedsync.NewSynchronizer(cache, logger)

	client := graphql.NewClient(cfg.GraphQLHTTPURL, graphql.ClientOptions{
		Tokens:            credentials,
		Logger:            logger,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	// Push events are applied by the synchronizer in arrival order per channel
	for _, channel := range []graphql.Channel{graphql.NewLinksChannel, graphql.NewVotesChannel} {
		channel := channel
		connector := graphql.NewSubscriptionConnector(cfg.GraphQLWSURL, channel, synchronizer, credentials)
		go func() {
			if err := connector.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("%s subscription stopped: %v", channel.Name, err)
			}
		}()
	}

	templates, err := web.NewTemplates()
	if err != nil {
		log.Fatal("Failed to load web templates: ", err)
	}

	handlers := web.NewHandlers(
		templates,
		feedview.NewService(client, cache, synchronizer, client, logger),
		search.NewExecutor(client, logger),
		gate,
		client,
		client,
		logger,
	)

	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	// Rate limiting: 120 requests per minute per client
	rateLimiter := web.NewRateLimiter(120, 1*time.Minute)
	go rateLimiter.Cleanup(ctx)
	r.Use(rateLimiter.Middleware)

	web.RegisterRoutes(r, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Failed to shut down server: %v", err)
		}
	}()

	log.Printf("Linkfeed starting on port %s", cfg.Port)
	log.Printf("GraphQL endpoint: %s (subscriptions: %s)", cfg.GraphQLHTTPURL, cfg.GraphQLWSURL)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server failed: ", err)
	}
	log.Println("Linkfeed stopped")
}
