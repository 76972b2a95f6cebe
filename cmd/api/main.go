package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/payment-reminder-api/internal/application/otp"
	"github.com/payment-reminder-api/internal/application/reminder"
	"github.com/payment-reminder-api/internal/config"
	"github.com/payment-reminder-api/internal/infrastructure/dynamo"
	"github.com/payment-reminder-api/internal/infrastructure/redisstore"
	"github.com/payment-reminder-api/internal/infrastructure/smtp"
	"github.com/payment-reminder-api/internal/infrastructure/sns"
	"github.com/payment-reminder-api/internal/infrastructure/ticket"
	"github.com/payment-reminder-api/internal/infrastructure/whatsapp"
	"github.com/payment-reminder-api/internal/scheduler"
	transporthttp "github.com/payment-reminder-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	otpRepo := dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPRecords)
	reminderRepo := dynamo.NewReminderRepo(dynamoClient, cfg.DynamoTables.Reminders)

	// Redis session store.
	redisClient, err := redisstore.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	sessionRepo := redisstore.NewSessionRepo(redisClient, cfg.SessionTTL)

	// Verification ticket signing.
	tickets, err := ticket.NewProvider(cfg.TicketSecret, cfg.TicketTTL)
	if err != nil {
		log.Fatalf("ticket provider: %v", err)
	}

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// WhatsApp transport with SNS SMS fallback (both optional).
	var waSender whatsapp.Sender
	if sender, err := whatsapp.NewSender(cfg); err == nil {
		waSender = sender
	} else {
		log.Printf("WARN: WhatsApp sender not available: %v", err)
	}
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	otpSvc := otp.NewService(otp.ServiceDeps{
		OTPRepo:  otpRepo,
		UserRepo: userRepo,
		Mailer:   mailer,
		Tickets:  tickets,
		Expiry:   cfg.OTPExpiry,
	})
	reminderSvc := reminder.NewService(reminder.ServiceDeps{
		Reminders: reminderRepo,
		Users:     userRepo,
		WhatsApp:  waSender,
		SMS:       smsSender,
	})

	sched := scheduler.New(
		scheduler.Job{
			Name:     "otp-sweep",
			Interval: cfg.OTPSweepInterval,
			Run: func(ctx context.Context) error {
				_, err := otpSvc.SweepExpired(ctx)
				return err
			},
		},
		scheduler.Job{
			Name:     "reminder-dispatch",
			Interval: cfg.ReminderInterval,
			Run:      reminderSvc.DispatchDue,
		},
	)
	sched.Start(context.Background())

	deps := &transporthttp.Deps{
		UserRepo:        userRepo,
		SessionRepo:     sessionRepo,
		Tickets:         tickets,
		OTPService:      otpSvc,
		ReminderService: reminderSvc,
	}
	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	sched.Stop()
	if err := redisClient.Close(); err != nil {
		log.Printf("WARN: closing redis: %v", err)
	}
	log.Println("Server stopped")
}
