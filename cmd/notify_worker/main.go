package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-ddd-postboard/config"
	"github.com/oksasatya/go-ddd-postboard/internal/worker"
	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
	"github.com/oksasatya/go-ddd-postboard/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; notify worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	deliveries, err := worker.Bind(ch, cfg.RabbitMQEventsExchange, cfg.RabbitMQNotifyQueue, 16)
	if err != nil {
		logger.WithError(err).Fatal("bind notify queue")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n := worker.NewNotifier(mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), cfg, logger)
	logger.WithField("queue", cfg.RabbitMQNotifyQueue).WithField("keys", worker.RoutingKeys).Info("notify worker listening")
	n.Run(ctx, deliveries)
	logger.Info("notify worker stopped")
}
