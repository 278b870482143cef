package db

import (
	"context"
	"errors"
	"testing"

	"github.com/gartstein/matchmaker/internal/matchmaker/catalog"
	e "github.com/gartstein/matchmaker/internal/matchmaker/errors"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to open test database")

	// Every new connection to :memory: is a fresh database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo, err := newRepository(db)
	require.NoError(t, err, "failed to migrate test database")
	return repo
}

func company(id, industry string) *models.Company {
	return &models.Company{
		ID:       id,
		Name:     "Company " + id,
		Industry: industry,
		Size:     models.SizeMedium,
		Location: "Bogotá",
		Culture:  []string{"Teamwork"},
		Tags:     []string{"ai", "payments"},
		Rating:   4.1,
	}
}

// TestAppendCompany tests the creation of a company row.
func TestAppendCompany(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	err := repo.AppendCompany(ctx, "fintech", company("fintech-1", "Fintech"))
	assert.NoError(t, err, "AppendCompany should not return an error")

	count, err := repo.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// TestAppendCompanyDuplicate verifies duplicate ids are rejected.
func TestAppendCompanyDuplicate(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendCompany(ctx, "fintech", company("fintech-1", "Fintech")))
	err := repo.AppendCompany(ctx, "fintech", company("fintech-1", "Fintech"))
	assert.ErrorIs(t, err, e.ErrValidation, "duplicate id should be a validation error")
}

// TestLoadShards checks grouping and ordering.
func TestLoadShards(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendCompany(ctx, "retail", company("retail-1", "Retail")))
	require.NoError(t, repo.AppendCompany(ctx, "fintech", company("fintech-1", "Fintech")))
	require.NoError(t, repo.AppendCompany(ctx, "fintech", company("fintech-2", "Fintech")))

	shards, err := repo.LoadShards(ctx)
	require.NoError(t, err)
	require.Len(t, shards, 2)

	assert.Equal(t, "fintech", shards[0].Name)
	require.Len(t, shards[0].Companies, 2)
	assert.Equal(t, "fintech-1", shards[0].Companies[0].ID)
	assert.Equal(t, "fintech-2", shards[0].Companies[1].ID)
	assert.Equal(t, []string{"ai", "payments"}, shards[0].Companies[0].Tags, "label lists round-trip as JSON")
	assert.Equal(t, []string{}, shards[0].Companies[0].Benefits, "nil lists load as empty")

	assert.Equal(t, "retail", shards[1].Name)
}

// TestSeed imports healthy shards and skips broken ones.
func TestSeed(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	imported, err := repo.Seed(ctx, []catalog.Shard{
		{Name: "fintech", Companies: []models.Company{*company("fintech-1", "Fintech")}},
		{Name: "broken", Err: errors.New("bad json")},
		{Name: "mining", Companies: []models.Company{*company("mining-1", "Mining")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

// TestSeedRollsBack ensures a failed seed leaves no rows behind.
func TestSeedRollsBack(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	_, err := repo.Seed(ctx, []catalog.Shard{
		{Name: "fintech", Companies: []models.Company{
			*company("fintech-1", "Fintech"),
			*company("fintech-1", "Fintech"),
		}},
	})
	assert.Error(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "transaction should have been rolled back")
}

// TestRepositoryBacksCatalog runs catalog creation against the repository.
func TestRepositoryBacksCatalog(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.AppendCompany(ctx, "fintech", company("fintech-1", "Fintech")))

	c := catalog.New(repo, zaptest.NewLogger(t))
	require.NoError(t, c.Load(ctx))

	created, err := c.Create(ctx, &models.CompanyInput{
		Name: "Second", Description: "d", Industry: "fintech", Size: "large", Location: "Lima",
	})
	require.NoError(t, err)
	assert.Equal(t, "fintech-2", created.ID)

	shards, err := repo.LoadShards(ctx)
	require.NoError(t, err)
	require.Len(t, shards, 1)
	assert.Len(t, shards[0].Companies, 2)
}

func TestExec(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.AppendCompany(ctx, "fintech", company("fintech-1", "Fintech")))

	require.NoError(t, repo.Exec(ctx, "DELETE FROM companies WHERE shard = ?", "fintech"))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
