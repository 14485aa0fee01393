package main

import (
	"log"
	"os"

	"subscout-be/internal/model"
	"subscout-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.ImportSession{},
		&model.Subscription{},
		&model.SubscriptionEvent{},
		&model.UnsubscribeAction{},
		&model.ActivityLogEntry{},
		&model.CatalogService{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Views
	// The uniqueness invariants live in partial indexes created by the
	// model tags; the read models below mirror them for reporting tools.
	log.Println("Step 3: Creating Views...")

	postMigrationSQL := []string{
		`CREATE OR REPLACE VIEW user_subscription_summary AS
		 SELECT u.id AS user_id, u.email,
		   COUNT(s.id) FILTER (WHERE s.status = 'active') AS active_subscriptions,
		   COALESCE(SUM(CASE
		     WHEN s.status = 'active' AND s.billing_period = 'monthly' THEN s.price
		     WHEN s.status = 'active' AND s.billing_period = 'annually' THEN s.price / 12
		     WHEN s.status = 'active' AND s.billing_period = 'quarterly' THEN s.price / 3
		     ELSE 0 END), 0) AS estimated_monthly_spend,
		   COALESCE(SUM(CASE
		     WHEN s.status = 'active' AND s.billing_period = 'monthly' THEN s.price * 12
		     WHEN s.status = 'active' AND s.billing_period = 'annually' THEN s.price
		     WHEN s.status = 'active' AND s.billing_period = 'quarterly' THEN s.price * 4
		     ELSE 0 END), 0) AS estimated_annual_spend
		 FROM users u
		 LEFT JOIN subscriptions s ON s.user_id = u.id
		 WHERE u.deleted_at IS NULL
		 GROUP BY u.id, u.email;`,

		`CREATE OR REPLACE VIEW recent_user_activity AS
		 SELECT a.id, a.user_id, a.activity_type, a.activity_description, a.created_at
		 FROM activity_log a
		 WHERE a.created_at >= now() - interval '30 days'
		 ORDER BY a.created_at DESC;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
