package main

import (
	"log"

	"seatkeep/internal/checkins"
	"seatkeep/internal/shared/config"
	"seatkeep/internal/shared/database"
	"seatkeep/pkg/messaging"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env when running outside Lambda
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize database connection
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	publisher, err := messaging.NewPublisher(cfg.Messaging)
	if err != nil {
		log.Printf("Event bus unavailable, check-ins will not be published: %v", err)
		publisher = messaging.NoopPublisher{}
	}
	defer publisher.Close()

	service := checkins.NewService(checkins.NewRepository(db.GetSQL()), publisher, cfg.Checkin)
	lambda.Start(NewHandler(service).Handle)
}
