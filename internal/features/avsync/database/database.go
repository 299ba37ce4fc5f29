package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"avsync-monitor/internal/core"
	"avsync-monitor/internal/features/avsync/models"
)

const upsertSiteQuery = `
	INSERT INTO avsync_sites (id, name, endpoint, is_active)
	VALUES (?, ?, ?, 1)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		endpoint = excluded.endpoint,
		is_active = 1,
		updated_at = CURRENT_TIMESTAMP
`

type DatabaseService struct {
	db *core.Database
}

func NewDatabaseService(db *core.Database) *DatabaseService {
	return &DatabaseService{
		db: db,
	}
}

// InitSchema creates the site registry table if it does not exist
func (s *DatabaseService) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS avsync_sites (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			endpoint TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`

	if _, err := s.db.ExecWithTimeout(ctx, query); err != nil {
		return fmt.Errorf("failed to create avsync_sites table: %w", err)
	}

	return nil
}

// GetActiveSites retrieves all active sites from the registry
func (s *DatabaseService) GetActiveSites() ([]models.Site, error) {
	query := `
		SELECT id, name, endpoint, is_active, created_at, updated_at
		FROM avsync_sites
		WHERE is_active = 1
		ORDER BY name
	`

	rows, err := s.db.QueryWithTimeout(context.Background(), query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// GetSiteByID retrieves a specific site by ID
func (s *DatabaseService) GetSiteByID(siteID string) (*models.Site, error) {
	query := `
		SELECT id, name, endpoint, is_active, created_at, updated_at
		FROM avsync_sites
		WHERE id = ?
	`

	var site models.Site
	var createdAt, updatedAt time.Time

	err := s.db.QueryRowWithTimeout(context.Background(), query, siteID).Scan(
		&site.ID,
		&site.Name,
		&site.Endpoint,
		&site.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not registered
		}
		return nil, err
	}

	site.CreatedAt = createdAt
	site.UpdatedAt = updatedAt

	return &site, nil
}

// UpsertSite inserts a site or updates its name/endpoint, reactivating it
func (s *DatabaseService) UpsertSite(ctx context.Context, site models.Site) error {
	if _, err := s.db.ExecWithTimeout(ctx, upsertSiteQuery, site.ID, site.Name, site.Endpoint); err != nil {
		return fmt.Errorf("failed to upsert site %s: %w", site.ID, err)
	}

	return nil
}

func scanSite(rows *sql.Rows) (models.Site, error) {
	var site models.Site
	var createdAt, updatedAt time.Time

	err := rows.Scan(
		&site.ID,
		&site.Name,
		&site.Endpoint,
		&site.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.Site{}, err
	}

	site.CreatedAt = createdAt
	site.UpdatedAt = updatedAt

	return site, nil
}
