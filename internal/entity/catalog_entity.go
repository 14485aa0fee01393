package entity

import (
	"time"

	"github.com/google/uuid"
)

// CatalogService is reference data for a known subscription service. It is
// never authoritative for a single user's subscription; the registry only
// bumps its detection statistics as a side effect of successful merges.
type CatalogService struct {
	Id            uuid.UUID
	ServiceName   string
	ServiceDomain string
	LogoURL       string
	Category      string

	// Known detection patterns
	EmailDomains []string
	Keywords     []string

	// Stats
	TimesDetected int
	AvgPrice      *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
