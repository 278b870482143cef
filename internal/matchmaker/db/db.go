// Package db implements the catalog Store on a SQL database through GORM.
// Postgres is used in deployments; tests run against in-memory sqlite.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/gartstein/matchmaker/internal/matchmaker/catalog"
	rows "github.com/gartstein/matchmaker/internal/matchmaker/db/models"
	e "github.com/gartstein/matchmaker/internal/matchmaker/errors"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&rows.Company{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: db}, nil
}

// LoadShards returns all rows grouped by shard, shards ordered by name and
// companies by insertion order.
func (r *Repository) LoadShards(ctx context.Context) ([]catalog.Shard, error) {
	var records []rows.Company
	result := r.db.WithContext(ctx).Order("shard ASC").Order("seq ASC").Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	var shards []catalog.Shard
	for _, rec := range records {
		if len(shards) == 0 || shards[len(shards)-1].Name != rec.Shard {
			shards = append(shards, catalog.Shard{Name: rec.Shard})
		}
		last := &shards[len(shards)-1]
		last.Companies = append(last.Companies, toModel(rec))
	}
	return shards, nil
}

// AppendCompany inserts company into shard.
func (r *Repository) AppendCompany(ctx context.Context, shard string, company *models.Company) error {
	rec := toRow(shard, company)
	result := r.db.WithContext(ctx).Create(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: company id %q already exists", e.ErrValidation, company.ID)
		}
		return result.Error
	}
	return nil
}

// Count returns the number of stored companies.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&rows.Company{}).Count(&count)
	return count, result.Error
}

// Seed imports shards in one transaction. Shards carrying a load error are skipped.
func (r *Repository) Seed(ctx context.Context, shards []catalog.Shard) (int, error) {
	imported := 0
	err := r.WithTransaction(ctx, func(repo *Repository) error {
		for _, shard := range shards {
			if shard.Err != nil {
				continue
			}
			for i := range shard.Companies {
				if err := repo.AppendCompany(ctx, shard.Name, &shard.Companies[i]); err != nil {
					return err
				}
				imported++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

// Shared reports that every replica reads the same database.
func (r *Repository) Shared() bool { return true }

// Exec runs a raw statement.
func (r *Repository) Exec(ctx context.Context, sql string, values ...interface{}) error {
	return r.db.WithContext(ctx).Exec(sql, values...).Error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func toRow(shard string, c *models.Company) rows.Company {
	return rows.Company{
		CompanyID:     c.ID,
		Shard:         shard,
		Name:          c.Name,
		Logo:          c.Logo,
		Description:   c.Description,
		Industry:      c.Industry,
		Size:          string(c.Size),
		Location:      c.Location,
		Culture:       c.Culture,
		Benefits:      c.Benefits,
		OpenPositions: c.OpenPositions,
		Rating:        c.Rating,
		Website:       c.Website,
		Tags:          c.Tags,
	}
}

func toModel(rec rows.Company) models.Company {
	c := models.Company{
		ID:            rec.CompanyID,
		Name:          rec.Name,
		Logo:          rec.Logo,
		Description:   rec.Description,
		Industry:      rec.Industry,
		Size:          models.CompanySize(rec.Size),
		Location:      rec.Location,
		Culture:       rec.Culture,
		Benefits:      rec.Benefits,
		OpenPositions: rec.OpenPositions,
		Rating:        rec.Rating,
		Website:       rec.Website,
		Tags:          rec.Tags,
	}
	c.Normalize()
	return c
}
