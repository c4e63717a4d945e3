package app

import (
	"context"
	"time"

	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/events"
	"devconnect/internal/repository"
	"devconnect/internal/service"
	"devconnect/internal/storage"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// App holds everything main needs to serve and later shut down.
type App struct {
	DB        *database.DB
	Services  *service.Service
	LogWriter *kafka.Writer
	Publisher events.Publisher
}

func New(cfg *config.Config) *App {
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("[app] failed to connect to DB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		log.Fatalf("[app] failed to initialize MinIO: %v", err)
	}

	logWriter := events.NewWriter(cfg.Kafka.Addr, cfg.Kafka.LogTopic, cfg.Kafka.Batch)
	publisher := events.NewPublisher(events.NewWriter(cfg.Kafka.Addr, cfg.Kafka.EventsTopic, cfg.Kafka.Batch))

	repo := repository.NewRepository(db.DB)
	services := service.NewService(repo, cfg, minioClient, publisher)

	return &App{
		DB:        db,
		Services:  services,
		LogWriter: logWriter,
		Publisher: publisher,
	}
}

// LogSink returns the access log writer, or a nil interface when Kafka logging is off.
func (a *App) LogSink() events.MessageWriter {
	if a.LogWriter == nil {
		return nil
	}
	return a.LogWriter
}

func (a *App) Close() {
	if err := a.Publisher.Close(); err != nil {
		log.Errorf("[app] failed to close event publisher: %v", err)
	}

	if a.LogWriter != nil {
		if err := a.LogWriter.Close(); err != nil {
			log.Errorf("[app] failed to close Kafka log writer: %v", err)
		}
	}

	if err := a.DB.CloseDB(); err != nil {
		log.Errorf("[app] failed to close DB: %v", err)
	}
}
