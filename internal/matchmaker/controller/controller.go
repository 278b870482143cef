// Package controller implements the core business logic (service layer)
// over the company catalog and the recommendation engine, publishing
// events for the changes and results it produces.
package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/matchmaker/internal/matchmaker/errors"
	"github.com/gartstein/matchmaker/internal/matchmaker/events"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"go.uber.org/zap"
)

// ServiceName is reported by the health check.
const ServiceName = "matchmaker"

type EventProducer interface {
	Produce(event events.Event)
}

// Catalog defines the catalog operations used by the services.
type Catalog interface {
	All() []models.Company
	ByIndustry(industry string) []models.Company
	ByID(id string) (models.Company, error)
	Create(ctx context.Context, input *models.CompanyInput) (models.Company, error)
	Industries() []models.Industry
	Len() int
	Version() uint64
	Fingerprint() uint64
}

// CompanyService exposes catalog queries and company creation.
type CompanyService struct {
	catalog  Catalog
	producer EventProducer
	logger   *zap.Logger
	now      func() time.Time
}

// NewCompanyService constructs a CompanyService. producer may be nil when
// event publishing is disabled.
func NewCompanyService(catalog Catalog, producer EventProducer, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		catalog:  catalog,
		producer: producer,
		logger:   logger.Named("company_service"),
		now:      time.Now,
	}
}

// ListCompanies returns every company, or only those of industry when it is
// not blank. A named industry without companies is reported as not found.
func (s *CompanyService) ListCompanies(_ context.Context, industry string) ([]models.Company, error) {
	if strings.TrimSpace(industry) == "" {
		return s.catalog.All(), nil
	}
	companies := s.catalog.ByIndustry(industry)
	if len(companies) == 0 {
		return nil, fmt.Errorf("%w: industry %q", e.ErrNotFound, industry)
	}
	return companies, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *CompanyService) GetCompany(_ context.Context, id string) (*models.Company, error) {
	company, err := s.catalog.ByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// CreateCompany adds a company to the catalog and announces it to the other
// replicas.
func (s *CompanyService) CreateCompany(ctx context.Context, input *models.CompanyInput) (*models.Company, error) {
	company, err := s.catalog.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	if s.producer != nil {
		event := events.NewEvent(events.CompanyCreated)
		event.Company = &company
		s.producer.Produce(event)
	}
	return &company, nil
}

func (s *CompanyService) ListIndustries(_ context.Context) []models.Industry {
	return s.catalog.Industries()
}

func (s *CompanyService) Health(_ context.Context) *models.Health {
	return &models.Health{
		Status:         "OK",
		Timestamp:      s.now().UTC(),
		Service:        ServiceName,
		TotalCompanies: s.catalog.Len(),
		CatalogVersion: s.catalog.Version(),
	}
}
