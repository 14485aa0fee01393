package main

import (
	"log"
	"os"

	"subscout-be/internal/model"
	"subscout-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding service catalog...")
	seedServiceCatalog(db)
	color.Green("✅ Seeding complete.")
}

func seedServiceCatalog(db *gorm.DB) {
	services := []model.CatalogService{
		{
			ServiceName:   "Netflix",
			ServiceDomain: "netflix.com",
			Category:      "streaming",
			EmailDomains:  datatypes.NewJSONSlice([]string{"netflix.com", "members.netflix.com"}),
			Keywords:      datatypes.NewJSONSlice([]string{"netflix"}),
		},
		{
			ServiceName:   "Spotify",
			ServiceDomain: "spotify.com",
			Category:      "music",
			EmailDomains:  datatypes.NewJSONSlice([]string{"spotify.com"}),
			Keywords:      datatypes.NewJSONSlice([]string{"spotify", "premium"}),
		},
		{
			ServiceName:   "Disney+",
			ServiceDomain: "disneyplus.com",
			Category:      "streaming",
			EmailDomains:  datatypes.NewJSONSlice([]string{"disneyplus.com", "mail.disneyplus.com"}),
			Keywords:      datatypes.NewJSONSlice([]string{"disney+", "disney plus"}),
		},
		{
			ServiceName:   "Amazon Prime",
			ServiceDomain: "amazon.com",
			Category:      "shopping",
			EmailDomains:  datatypes.NewJSONSlice([]string{"amazon.com", "primevideo.com"}),
			Keywords:      datatypes.NewJSONSlice([]string{"prime membership", "prime video"}),
		},
		{
			ServiceName:   "YouTube Premium",
			ServiceDomain: "youtube.com",
			Category:      "streaming",
			EmailDomains:  datatypes.NewJSONSlice([]string{"youtube.com", "google.com"}),
			Keywords:      datatypes.NewJSONSlice([]string{"youtube premium"}),
		},
		{
			ServiceName:   "Dropbox",
			ServiceDomain: "dropbox.com",
			Category:      "storage",
			EmailDomains:  datatypes.NewJSONSlice([]string{"dropbox.com"}),
			Keywords:      datatypes.NewJSONSlice([]string{"dropbox"}),
		},
		{
			ServiceName:   "iCloud+",
			ServiceDomain: "apple.com",
			Category:      "storage",
			EmailDomains:  datatypes.NewJSONSlice([]string{"apple.com", "email.apple.com"}),
			Keywords:      datatypes.NewJSONSlice([]string{"icloud"}),
		},
		{
			ServiceName:   "The New York Times",
			ServiceDomain: "nytimes.com",
			Category:      "news",
			EmailDomains:  datatypes.NewJSONSlice([]string{"nytimes.com"}),
			Keywords:      datatypes.NewJSONSlice([]string{"nytimes", "ny times", "times subscription"}),
		},
		{
			ServiceName:   "Adobe Creative Cloud",
			ServiceDomain: "adobe.com",
			Category:      "software",
			EmailDomains:  datatypes.NewJSONSlice([]string{"adobe.com", "mail.adobe.com"}),
			Keywords:      datatypes.NewJSONSlice([]string{"creative cloud", "adobe"}),
		},
		{
			ServiceName:   "Notion",
			ServiceDomain: "notion.so",
			Category:      "productivity",
			EmailDomains:  datatypes.NewJSONSlice([]string{"notion.so", "mail.notion.so"}),
			Keywords:      datatypes.NewJSONSlice([]string{"notion"}),
		},
	}

	for _, svc := range services {
		var count int64
		db.Model(&model.CatalogService{}).Where("service_name = ?", svc.ServiceName).Count(&count)
		if count > 0 {
			color.Yellow("  skip %s (exists)", svc.ServiceName)
			continue
		}
		if err := db.Create(&svc).Error; err != nil {
			color.Red("  failed %s: %v", svc.ServiceName, err)
			continue
		}
		color.Green("  seeded %s", svc.ServiceName)
	}
}
