package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/okvist/localspot/api/rest"
	"github.com/okvist/localspot/cache"
	"github.com/okvist/localspot/cache/memory"
	rediscache "github.com/okvist/localspot/cache/redis"
	"github.com/okvist/localspot/hub"
	"github.com/okvist/localspot/models"
	"github.com/okvist/localspot/realtime"
	"github.com/okvist/localspot/service"
	"github.com/okvist/localspot/worker"
	"golang.org/x/oauth2"
)

func main() {
	ctx := context.Background()
	devMode := os.Getenv("DEV_MODE") == "true"

	apiEndpoint := os.Getenv("API_ENDPOINT")
	if apiEndpoint == "" {
		log.Fatalf("API_ENDPOINT is required")
	}

	// The in-process cache is the default; a redis endpoint switches to
	// the shared implementation so several instances see the same state.
	var reviewCache cache.ReviewCache = memory.NewMemoryReviewCache()
	if redisEndpoint := os.Getenv("REDIS_ENDPOINT"); redisEndpoint != "" {
		redisReviewCache, err := rediscache.NewRedisReviewCache(ctx, devMode, redisEndpoint)
		if err != nil {
			log.Fatalf("Failed to create redis cache: %v", err)
		}
		reviewCache = redisReviewCache
	}

	oauthConfigs, err := service.ConfigureOAuth(map[string]*oauth2.Config{
		"github": {
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		},
		"google": {
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},
	})
	if err != nil {
		log.Fatalf("Failed to configure oauth providers: %v", err)
	}

	token := os.Getenv("API_TOKEN")
	if token == "" {
		provider := os.Getenv("OAUTH_PROVIDER")
		code := os.Getenv("OAUTH_CODE")
		conf, ok := oauthConfigs[provider]
		if !ok || code == "" {
			log.Fatalf("API_TOKEN or OAUTH_PROVIDER/OAUTH_CODE is required")
		}
		tok, err := conf.Exchange(ctx, code)
		if err != nil {
			log.Fatalf("OAuth exchange failed: %v", err)
		}
		token = tok.AccessToken
	}

	session, err := service.SessionFromToken(token)
	if err != nil {
		log.Printf("Token is not a JWT, using it as an opaque bearer token")
		session = models.Session{Token: token}
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	reviewHub := hub.NewHub()
	restClient := rest.NewClient(apiEndpoint, token)

	previewBatcher := worker.NewPreviewBatcher(restClient, reviewCache, reviewHub, 0)
	go previewBatcher.Run(shutdownCtx)

	feed := realtime.NewClient(apiEndpoint, token, reviewCache, reviewHub)
	go feed.Run(shutdownCtx)

	svc := service.NewService(restClient, reviewCache, reviewHub, previewBatcher, session)

	// Watch the businesses named on the command line and log their
	// preview snippets as they land.
	for _, arg := range os.Args[1:] {
		businessId := arg
		reviewHub.Subscribe(hub.PreviewKey(businessId), func() {
			preview, _, err := reviewCache.GetPreview(context.Background(), businessId)
			if err != nil {
				log.Printf("business %s: cache read failed: %v", businessId, err)
				return
			}
			if preview == nil {
				log.Printf("business %s: no preview", businessId)
				return
			}
			log.Printf("business %s: %q", businessId, preview.Content)
		})

		if preview, ok := svc.RequestPreview(shutdownCtx, businessId); ok {
			if preview == nil {
				log.Printf("business %s: no preview (cached)", businessId)
			} else {
				log.Printf("business %s: %q (cached)", businessId, preview.Content)
			}
		}
	}

	<-shutdownCtx.Done()
	log.Printf("Shutting down...")
}
