package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"payment-service/internal/config"
	"payment-service/internal/consumer"
	"payment-service/internal/handler"
	"payment-service/internal/httpapi"
	"payment-service/internal/notify"
	"payment-service/internal/producer"
	"payment-service/internal/repository"
	"payment-service/internal/sender"
	"payment-service/internal/service"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// closer is anything that needs draining on shutdown.
type closer interface {
	Close(ctx context.Context) error
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load(".env")
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	cfg.SetupLogger()
	gin.SetMode(cfg.GinMode)
	log.Info("Starting payment service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()

	if err := repository.Migrate(db, cfg.Database.MigrationsTable); err != nil {
		log.WithError(err).Fatal("Could not apply migration")
	}

	serviceRepository := repository.NewPostgresServiceRepository(db, cfg.Database.QueryTimeout)
	transactionRepository := repository.NewPostgresTransactionRepository(db, cfg.Database.QueryTimeout)
	emailRepository := repository.NewPostgresEmailRepository(db, cfg.Database.QueryTimeout)

	var emailSender sender.EmailSender = sender.NoopSender{}
	if cfg.SMTP.Enabled() {
		smtpSender, err := sender.NewSMTPEmailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From, cfg.SMTP.PoolSize)
		if err != nil {
			log.WithError(err).Fatal("Failed to create SMTP sender")
		}
		defer smtpSender.Close()
		emailSender = smtpSender
	} else {
		log.Warn("SMTP environment variables are not set. Receipts will not be mailed.")
	}

	notificationService := service.NewNotificationService(emailSender, emailRepository, cfg.Notify.MaxAttempts, cfg.Notify.RetryDelay)

	var (
		dispatcher    service.Dispatcher
		pipeline      closer
		kafkaConsumer *consumer.KafkaConsumer
		consumerDone  = make(chan struct{})
	)
	if cfg.Kafka.Enabled() {
		servers := strings.Trim(cfg.Kafka.BootstrapServers, "\"")
		log.WithField("kafka_servers", servers).Info("Connecting to Kafka")

		p, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": servers})
		if err != nil {
			log.WithError(err).Fatal("Failed to create Kafka producer")
		}
		publisher := producer.NewKafkaPublisher(p, cfg.Kafka.Topic)
		dispatcher, pipeline = publisher, publisher

		c, err := kafka.NewConsumer(&kafka.ConfigMap{
			"bootstrap.servers": servers,
			"group.id":          cfg.Kafka.GroupID,
			"auto.offset.reset": "earliest",
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to create Kafka consumer")
		}
		kafkaConsumer, err = consumer.NewKafkaConsumer(c, cfg.Kafka.Topic, handler.NewReceiptHandler(notificationService))
		if err != nil {
			log.WithError(err).Fatal("Failed to subscribe to topic")
		}
		go func() {
			defer close(consumerDone)
			if err := kafkaConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("Kafka consumer stopped")
			}
		}()
	} else {
		queue := notify.NewQueue(notificationService, cfg.Notify.Workers, cfg.Notify.QueueSize)
		dispatcher, pipeline = queue, queue
	}

	catalog := service.NewCatalog(serviceRepository, cfg.Pricing.MinServicePrice, cfg.Pricing.MinCustomAmount)
	recorder := service.NewRecorder(transactionRepository, dispatcher, cfg.Pricing.DefaultCurrency)

	if cfg.PayPal.ClientID == "" {
		log.Warn("PAYPAL_CLIENT_ID is not set; /api/config will fail")
	}
	h := httpapi.NewHandler(catalog, recorder, db, cfg.PayPal.ClientID)
	server := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(h, cfg.StaticDir))

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Caught signal: terminating")
	case err := <-serverErr:
		log.WithError(err).Error("HTTP server failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := pipeline.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("Notification pipeline did not drain")
	}
	if kafkaConsumer != nil {
		select {
		case <-consumerDone:
		case <-shutdownCtx.Done():
		}
		if err := kafkaConsumer.Close(); err != nil {
			log.WithError(err).Error("Failed to close Kafka consumer")
		}
	}
	log.Info("Payment service stopped")
}
