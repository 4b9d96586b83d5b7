// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/wabulk-backend/internal/auth"
	"github.com/unclebandit/wabulk-backend/internal/config"
	"github.com/unclebandit/wabulk-backend/internal/controller"
	"github.com/unclebandit/wabulk-backend/internal/db"
	"github.com/unclebandit/wabulk-backend/internal/handler"
	"github.com/unclebandit/wabulk-backend/internal/logger"
	"github.com/unclebandit/wabulk-backend/internal/queue"
	"github.com/unclebandit/wabulk-backend/internal/ratelimit"
	"github.com/unclebandit/wabulk-backend/internal/repository"
	"github.com/unclebandit/wabulk-backend/internal/service"
	"github.com/unclebandit/wabulk-backend/internal/storage"
	"github.com/unclebandit/wabulk-backend/internal/whatsapp"
)

type repositories struct {
	contacts  repository.ContactRepositoryInterface
	templates repository.TemplateRepositoryInterface
	campaigns repository.CampaignRepositoryInterface
	messages  repository.OutboundMessageRepositoryInterface
	media     repository.MediaRepositoryInterface
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatal("failed to load config:", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.RedactPII != nil {
		logger.SetRedactPII(*cfg.Log.RedactPII)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}

	ctx := context.Background()

	// Storage
	var repos repositories
	if cfg.Database.URL == "" {
		log.Println("⚠️ No DATABASE_URL, keeping data in memory")
		store := repository.NewMemoryStore()
		repos = repositories{store.Contacts(), store.Templates(), store.Campaigns(), store.Messages(), store.Media()}
	} else {
		conn, err := db.Open(cfg.Database)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()
		repos = repositories{
			contacts:  &repository.ContactRepository{DB: conn},
			templates: &repository.TemplateRepository{DB: conn},
			campaigns: &repository.CampaignRepository{DB: conn},
			messages:  &repository.OutboundMessageRepository{DB: conn},
			media:     &repository.MediaRepository{DB: conn},
		}
	}

	var objects storage.ObjectStore
	if cfg.Storage.Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			log.Fatal("failed to init media storage:", err)
		}
		objects = s3Store
	} else {
		log.Println("⚠️ No S3 bucket configured, media uploads disabled")
	}

	// Rate limiting
	var limiter ratelimit.Limiter
	if cfg.Redis.URL != "" {
		client := ratelimit.NewRedisClient(cfg.Redis.URL)
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window())
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window())
	}

	sender := whatsapp.FromConfig(cfg.WhatsApp)
	renderer := service.NewRenderer(cfg.Dispatch.Location(), cfg.Dispatch.DateLayout)

	campaignService := &service.CampaignService{
		CampaignRepo: repos.campaigns,
		TemplateRepo: repos.templates,
		ContactRepo:  repos.contacts,
		OutboundRepo: repos.messages,
		Topic:        cfg.Queue.Topic,
		Dispatcher: &service.BulkDispatcher{
			Campaigns:   repos.campaigns,
			Messages:    repos.messages,
			Sender:      sender,
			Renderer:    renderer,
			CountryCode: cfg.Dispatch.CountryCode,
			Delay:       cfg.Dispatch.Delay(),
		},
	}

	// Async dispatch: RabbitMQ when configured, otherwise jobs run in this process
	if cfg.Queue.URL != "" {
		q, err := queue.DialAMQP(cfg.Queue.URL)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ:", err)
		}
		defer q.Close()
		campaignService.Queue = q
	} else {
		q := queue.NewInMemoryQueue()
		if err := q.Subscribe(cfg.Queue.Topic, service.NewWorker(campaignService).Handle); err != nil {
			log.Fatal(err)
		}
		campaignService.Queue = q
	}

	router := &handler.Router{
		Tokens:  auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.Audience),
		Limiter: limiter,
		Contacts: &controller.ContactController{ContactService: &service.ContactService{
			Repo:        repos.contacts,
			CountryCode: cfg.Dispatch.CountryCode,
		}},
		Templates: &controller.TemplateController{TemplateService: &service.TemplateService{
			Repo:     repos.templates,
			Renderer: renderer,
		}},
		Campaigns: &controller.CampaignController{CampaignService: campaignService},
		Media: &controller.MediaController{MediaService: &service.MediaService{
			Repo:     repos.media,
			Store:    objects,
			MaxBytes: int64(cfg.Storage.MaxUploadMB) << 20,
		}},
		Messages: &controller.MessageController{MessageService: &service.MessageService{
			ContactRepo:  repos.contacts,
			OutboundRepo: repos.messages,
			Sender:       sender,
			Renderer:     renderer,
			CountryCode:  cfg.Dispatch.CountryCode,
		}},
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Handler(),
	}

	go func() {
		log.Println("🚀 Server running on", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("graceful shutdown failed:", err)
	}
}
