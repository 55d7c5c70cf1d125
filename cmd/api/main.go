package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ippcom/goodies-api/internal/database"
	"github.com/ippcom/goodies-api/internal/email"
	"github.com/ippcom/goodies-api/internal/handlers"
	"github.com/ippcom/goodies-api/internal/payments"
	"github.com/ippcom/goodies-api/internal/pricing"
	"github.com/ippcom/goodies-api/internal/routes"
)

func main() {
	// --- Environment ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not load .env file. Relying on system environment variables.")
	}

	// --- Database ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// --- Payment Provider ---
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Fatal("STRIPE_SECRET_KEY environment variable is not set")
	}
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if webhookSecret == "" {
		log.Println("WARNING: STRIPE_WEBHOOK_SECRET is not set; webhook events will be rejected.")
	}
	stripeClient := payments.NewStripeClient(stripeKey, webhookSecret)

	// --- Transactional Mail ---
	var mailer email.Sender
	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		from := os.Getenv("QUOTES_FROM_EMAIL")
		if from == "" {
			from = "no-reply@ippcom-goodies.local"
		}
		mailer = email.NewResendSender(apiKey, from)
	} else {
		log.Println("WARNING: RESEND_API_KEY is not set; emails will be logged instead of sent.")
		mailer = email.LogSender{}
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:       db,
		Payments: stripeClient,
		Mailer:   mailer,
		Prices:   pricing.NewResolver(db),
		QuotesTo: os.Getenv("QUOTES_TO_EMAIL"),
	}

	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting goodies API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
