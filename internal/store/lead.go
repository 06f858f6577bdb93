package store

import (
	"time"

	"github.com/google/uuid"

	"carai-site-backend/internal/intake"
)

// Lead is one stored contact inquiry: the normalized headline columns plus
// the full raw field map.
type Lead struct {
	ID          string         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	ServiceType string         `json:"service_type"`
	FullName    string         `json:"full_name"`
	Email       string         `json:"email"`
	WhatsApp    string         `json:"whatsapp,omitempty"`
	BrandName   string         `json:"brand_name,omitempty"`
	Website     string         `json:"website,omitempty"`
	Message     string         `json:"message,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
}

// NewLead stamps a payload with an ID and creation time.
func NewLead(p intake.Payload) Lead {
	return Lead{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		ServiceType: string(p.ServiceType),
		FullName:    p.FullName,
		Email:       p.Email,
		WhatsApp:    p.WhatsApp,
		BrandName:   p.BrandName,
		Website:     p.Website,
		Message:     p.Message,
		Fields:      p.Fields,
	}
}

// LeadStore persists inquiries and lists the most recent ones.
type LeadStore interface {
	SaveLead(lead Lead) error
	RecentLeads(limit int) ([]Lead, error)
}
