package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/wabulk-backend/internal/config"
	"github.com/unclebandit/wabulk-backend/internal/db"
	"github.com/unclebandit/wabulk-backend/internal/logger"
	"github.com/unclebandit/wabulk-backend/internal/queue"
	"github.com/unclebandit/wabulk-backend/internal/repository"
	"github.com/unclebandit/wabulk-backend/internal/service"
	"github.com/unclebandit/wabulk-backend/internal/whatsapp"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatal("failed to load config:", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.Queue.URL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	// Connect to DB
	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Repositories
	contactRepo := &repository.ContactRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	outboundRepo := &repository.OutboundMessageRepository{DB: conn}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		TemplateRepo: &repository.TemplateRepository{DB: conn},
		ContactRepo:  contactRepo,
		OutboundRepo: outboundRepo,
		Dispatcher: &service.BulkDispatcher{
			Campaigns:   campaignRepo,
			Messages:    outboundRepo,
			Sender:      whatsapp.FromConfig(cfg.WhatsApp),
			Renderer:    service.NewRenderer(cfg.Dispatch.Location(), cfg.Dispatch.DateLayout),
			CountryCode: cfg.Dispatch.CountryCode,
			Delay:       cfg.Dispatch.Delay(),
		},
	}

	// Connect to RabbitMQ
	q, err := queue.DialAMQP(cfg.Queue.URL)
	if err != nil {
		log.Fatal("failed to connect to RabbitMQ:", err)
	}
	defer q.Close()

	if err := q.Subscribe(cfg.Queue.Topic, service.NewWorker(campaignService).Handle); err != nil {
		log.Fatal("failed to register consumer:", err)
	}

	log.Println("Worker running, waiting for dispatch jobs on", cfg.Queue.Topic)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("Worker stopping")
}
