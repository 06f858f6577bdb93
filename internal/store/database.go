package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"carai-site-backend/internal/db"
)

// DatabaseStore persists leads in PostgreSQL.
type DatabaseStore struct {
	db *db.DB
}

func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

func (ds *DatabaseStore) SaveLead(lead Lead) error {
	if lead.Email == "" {
		return fmt.Errorf("email is required")
	}
	fields, err := json.Marshal(lead.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode lead fields: %w", err)
	}

	query := `
		INSERT INTO leads (id, created_at, service_type, full_name, email, whatsapp, brand_name, website, message, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = ds.db.Exec(query,
		lead.ID, lead.CreatedAt, lead.ServiceType, lead.FullName, lead.Email,
		lead.WhatsApp, lead.BrandName, lead.Website, lead.Message, fields,
	)
	if err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}

func (ds *DatabaseStore) RecentLeads(limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, created_at, service_type, full_name, email, whatsapp, brand_name, website, message, fields
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := ds.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var l Lead
		var fields sql.NullString
		if err := rows.Scan(
			&l.ID, &l.CreatedAt, &l.ServiceType, &l.FullName, &l.Email,
			&l.WhatsApp, &l.BrandName, &l.Website, &l.Message, &fields,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		if fields.Valid && fields.String != "" {
			_ = json.Unmarshal([]byte(fields.String), &l.Fields)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leads, nil
}
