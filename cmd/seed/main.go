package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"seatkeep/internal/capacity"
	"seatkeep/internal/checkins"
	"seatkeep/internal/floorplans"
	"seatkeep/internal/promocodes"
	"seatkeep/internal/seats"
	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/config"
	"seatkeep/internal/shared/constants"
	"seatkeep/internal/shared/database"
	"seatkeep/pkg/cache"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// demoEventID is stable so repeated seeding replaces the same event
var demoEventID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("seatkeep:demo-event-42"))

var demoPromoCodes = []string{"WELCOME10", "VIP50"}

type Seeder struct {
	db    *database.DB
	cache cache.Service

	floorPlans floorplans.Service
	seats      seats.Service
	promoCodes promocodes.Service
	capacity   capacity.Service
}

func main() {
	fmt.Println("🌱 Starting Seatkeep Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := NewSeeder(db)
	eventID := demoEventID
	if raw := os.Getenv("SEED_EVENT_ID"); raw != "" {
		if eventID, err = uuid.Parse(raw); err != nil {
			log.Fatalf("Invalid SEED_EVENT_ID %q: %v", raw, err)
		}
	}

	ctx := context.Background()

	fmt.Println("\n🧹 Cleaning demo data...")
	if err := seeder.Clean(ctx, eventID); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Demo data cleaned")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(ctx, eventID); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Demo event:", eventID)
}

func NewSeeder(db *database.DB) *Seeder {
	cacheService := cache.NewService(db.GetRedisClient())
	seatRepo := seats.NewRepository(db.GetSQL())
	floorPlans := floorplans.NewService(floorplans.NewRepository(db.GetSQL()), cacheService, nil, seatRepo.DeleteByEventTx)

	return &Seeder{
		db:         db,
		cache:      cacheService,
		floorPlans: floorPlans,
		seats:      seats.NewService(seatRepo, floorPlans, cacheService, nil),
		promoCodes: promocodes.NewService(promocodes.NewRepository(db.GetSQL())),
		capacity:   capacity.NewService(floorPlans, cacheService),
	}
}

// Clean removes the demo event's layout, seats, check-ins and promo codes
func (s *Seeder) Clean(ctx context.Context, eventID uuid.UUID) error {
	if _, err := s.floorPlans.DeleteFloorPlan(ctx, eventID.String()); err != nil && !apperrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete floor plan: %w", err)
	}

	sqlDB := s.db.GetSQL().WithContext(ctx)
	if err := sqlDB.Where("event_id = ?", eventID).Delete(&checkins.CheckinRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete check-ins: %w", err)
	}
	if err := sqlDB.Where("code IN ?", demoPromoCodes).Delete(&promocodes.PromoCode{}).Error; err != nil {
		return fmt.Errorf("failed to delete promo codes: %w", err)
	}

	// Clear cached views to ensure fresh state
	for _, pattern := range []string{constants.PATTERN_INVALIDATE_CAPACITY_ALL, constants.PATTERN_INVALIDATE_SEATS_ALL} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			log.Printf("Warning: Failed to clear cache %s: %v", pattern, err)
		}
	}
	return nil
}

// SeedAll builds the demo event: a 2x3 VIP grid at 500 and ten GENERAL seats at 150
func (s *Seeder) SeedAll(ctx context.Context, eventID uuid.UUID) error {
	fmt.Println("  🗺️  Saving floor plan...")
	plan, err := s.floorPlans.SaveLayout(ctx, eventID.String(), floorplans.SaveLayoutRequest{
		Name: "Event 42 Main Hall",
		Objects: []floorplans.ObjectRequest{
			{Kind: "GRID", Label: "VIP Block", Section: "VIP", Tier: "VIP", GenderTag: "F", Rows: 2, Columns: 3, Price: 500},
			{Kind: "FREE", Label: "Floor", Section: "General", Tier: "GENERAL", TotalSeats: 10, Price: 150},
			{Kind: "STAGE", Label: "Stage", Tier: "GENERAL"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to save floor plan: %w", err)
	}
	fmt.Printf("    ✅ Floor plan v%d with %d objects\n", plan.Version, len(plan.Objects))

	fmt.Println("  💺 Generating seats...")
	generated, err := s.seats.GenerateSeats(ctx, eventID.String(), seats.GenerateSeatsRequest{Force: true})
	if err != nil {
		return fmt.Errorf("failed to generate seats: %w", err)
	}
	for section, count := range generated.BySection {
		fmt.Printf("    ✅ %s: %d seats\n", section, count)
	}

	fmt.Println("  🏷️  Creating promo codes...")
	unlimited := promocodes.Unlimited
	hundred := 100
	promos := []promocodes.CreatePromoCodeRequest{
		{Code: "WELCOME10", DiscountType: "PERCENT", DiscountAmount: 10, MaxRedemptions: &unlimited, Description: "10% off any event"},
		{Code: "VIP50", EventID: eventID.String(), DiscountType: "FIXED", DiscountAmount: 50, MaxRedemptions: &hundred, MinOrderAmount: 500, Description: "50 off VIP orders"},
	}
	for _, req := range promos {
		code, err := s.promoCodes.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create promo code %s: %w", req.Code, err)
		}
		fmt.Printf("    ✅ Created promo code: %s (%s %.2f)\n", code.Code, code.DiscountType, code.DiscountAmount)
	}

	report, err := s.capacity.AggregateCapacity(ctx, eventID.String(), 20)
	if err != nil {
		return fmt.Errorf("failed to aggregate capacity: %w", err)
	}
	fmt.Printf("  📊 Capacity %d, revenue potential %.2f, utilization %s\n",
		report.TotalCapacity, report.RevenuePotential, report.Utilization)

	return nil
}
