// Package catalog holds the in-memory company catalog. Companies are loaded
// from per-industry shards of a Store and are only ever appended to.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	e "github.com/gartstein/matchmaker/internal/matchmaker/errors"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"go.uber.org/zap"
)

// Shard is one industry partition of the catalog as read from a Store.
type Shard struct {
	// Name is the lowercase industry slug, e.g. "fintech".
	Name      string
	Companies []models.Company
	// Err is set when the shard could not be read. Such shards are skipped.
	Err error
}

// Store is the backing storage of the catalog.
type Store interface {
	LoadShards(ctx context.Context) ([]Shard, error)
	AppendCompany(ctx context.Context, shard string, company *models.Company) error
}

// SharedStore is implemented by stores that every replica reads and writes.
// Companies ingested from other replicas are already present in a shared
// store and are not appended again.
type SharedStore interface {
	Shared() bool
}

// Catalog serves read queries over a snapshot of all companies. The snapshot
// is replaced, never modified, so readers need no coordination beyond the
// pointer swap.
type Catalog struct {
	store  Store
	logger *zap.Logger

	mu          sync.RWMutex
	companies   []models.Company
	version     uint64
	fingerprint uint64

	// writeMu serializes Load, Create and Ingest so a snapshot read from the
	// store never replaces a newer one and sequence ids stay unique.
	writeMu sync.Mutex
}

// New constructs an empty Catalog backed by store. Call Load to populate it.
func New(store Store, logger *zap.Logger) *Catalog {
	return &Catalog{
		store:     store,
		logger:    logger.Named("catalog"),
		companies: []models.Company{},
	}
}

// NewFromCompanies builds a Catalog with a fixed initial snapshot.
func NewFromCompanies(store Store, logger *zap.Logger, companies []models.Company) *Catalog {
	c := New(store, logger)
	c.swap(normalized(companies))
	return c
}

// Load reads every shard and replaces the snapshot. Shards that fail to load
// are logged and skipped; only a failure to enumerate shards is returned.
func (c *Catalog) Load(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	shards, err := c.store.LoadShards(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate shards: %w", err)
	}

	var all []models.Company
	loaded := 0
	for _, shard := range shards {
		if shard.Err != nil {
			c.logger.Warn("Skipping shard",
				zap.String("shard", shard.Name),
				zap.Error(fmt.Errorf("%w: %w", e.ErrDataLoad, shard.Err)),
			)
			continue
		}
		all = append(all, shard.Companies...)
		loaded++
	}

	c.swap(normalized(all))

	c.logger.Info("Catalog loaded",
		zap.Int("shards", loaded),
		zap.Int("skipped", len(shards)-loaded),
		zap.Int("companies", len(all)),
	)
	return nil
}

// Reload is Load under the name used by the scheduler.
func (c *Catalog) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// All returns every company in shard-load order.
func (c *Catalog) All() []models.Company {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.companies)
}

// Len returns the number of companies.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.companies)
}

// Version increases every time the snapshot changes. It is local to this
// process.
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Fingerprint hashes the snapshot contents. Replicas holding the same
// companies in the same order share a fingerprint.
func (c *Catalog) Fingerprint() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fingerprint
}

// ByIndustry returns companies whose industry equals industry ignoring case.
// Unknown industries yield an empty slice.
func (c *Catalog) ByIndustry(industry string) []models.Company {
	key := industryKey(industry)
	out := []models.Company{}
	for _, company := range c.snapshot() {
		if industryKey(company.Industry) == key {
			out = append(out, company)
		}
	}
	return out
}

// ByID returns the first company with the given id.
func (c *Catalog) ByID(id string) (models.Company, error) {
	for _, company := range c.snapshot() {
		if company.ID == id {
			return company, nil
		}
	}
	return models.Company{}, fmt.Errorf("%w: company %q", e.ErrNotFound, id)
}

// Ingest adds a company created by another replica. It reports false when a
// company with the same id is already present. Unless the store is shared,
// the company is appended to its shard first so a reload keeps it.
func (c *Catalog) Ingest(ctx context.Context, company models.Company) (bool, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	current := c.snapshot()
	if slices.ContainsFunc(current, func(existing models.Company) bool { return existing.ID == company.ID }) {
		return false, nil
	}
	company.Normalize()
	if !isShared(c.store) {
		if err := c.store.AppendCompany(ctx, industryKey(company.Industry), &company); err != nil {
			return false, fmt.Errorf("failed to persist ingested company: %w", err)
		}
	}
	c.swap(append(slices.Clone(current), company))
	return true, nil
}

func isShared(store Store) bool {
	s, ok := store.(SharedStore)
	return ok && s.Shared()
}

// snapshot returns the current slice without copying. Callers must not modify it.
func (c *Catalog) snapshot() []models.Company {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.companies
}

func (c *Catalog) swap(companies []models.Company) {
	sum := fingerprint(companies)
	c.mu.Lock()
	c.companies = companies
	c.version++
	c.fingerprint = sum
	c.mu.Unlock()
}

func fingerprint(companies []models.Company) uint64 {
	d := xxhash.New()
	enc := json.NewEncoder(d)
	for i := range companies {
		// Company holds only strings, numbers and string slices.
		_ = enc.Encode(&companies[i])
	}
	return d.Sum64()
}

func normalized(companies []models.Company) []models.Company {
	out := make([]models.Company, len(companies))
	for i, company := range companies {
		company.Normalize()
		out[i] = company
	}
	return out
}

func industryKey(industry string) string {
	return strings.ToLower(strings.TrimSpace(industry))
}
