package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk site list the registry is seeded from
type SeedFile struct {
	Sites []SeedSite `yaml:"sites"`
}

// SeedSite is one site entry in the seed file. An empty endpoint registers
// the site without polling it.
type SeedSite struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
}

// ParseSeedFile reads and validates a YAML site list
func ParseSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse sites file: %w", err)
	}

	if err := seed.Validate(); err != nil {
		return nil, err
	}

	return &seed, nil
}

// Validate checks the seed file for duplicate or incomplete entries.
// It does not mutate the seed.
func (f *SeedFile) Validate() error {
	seen := make(map[string]struct{}, len(f.Sites))

	for i, site := range f.Sites {
		if site.ID == "" {
			return fmt.Errorf("site entry %d: id is required", i)
		}
		if site.Name == "" {
			return fmt.Errorf("site %q: name is required", site.ID)
		}
		if _, dup := seen[site.ID]; dup {
			return fmt.Errorf("site %q: duplicate id", site.ID)
		}
		seen[site.ID] = struct{}{}
	}

	return nil
}

// SeedFromFile loads the YAML site list into the registry in one
// transaction. Listed sites are upserted; previously registered sites
// missing from the file are deactivated rather than deleted, so a site
// removed from the seed file keeps its registry row.
func (s *DatabaseService) SeedFromFile(ctx context.Context, path string) (int, error) {
	seed, err := ParseSeedFile(path)
	if err != nil {
		return 0, err
	}

	err = s.db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, entry := range seed.Sites {
			if _, err := tx.ExecContext(ctx, upsertSiteQuery, entry.ID, entry.Name, entry.Endpoint); err != nil {
				return fmt.Errorf("failed to upsert site %s: %w", entry.ID, err)
			}
		}

		return deactivateSitesExcept(ctx, tx, seed.Sites)
	})
	if err != nil {
		return 0, err
	}

	return len(seed.Sites), nil
}

// deactivateSitesExcept marks every active site not listed in the seed as
// inactive
func deactivateSitesExcept(ctx context.Context, tx *sql.Tx, keep []SeedSite) error {
	query := `UPDATE avsync_sites SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE is_active = 1`
	args := make([]interface{}, 0, len(keep))

	if len(keep) > 0 {
		query += ` AND id NOT IN (`
		for i, site := range keep {
			if i > 0 {
				query += ", "
			}
			query += "?"
			args = append(args, site.ID)
		}
		query += ")"
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to deactivate removed sites: %w", err)
	}

	return nil
}
