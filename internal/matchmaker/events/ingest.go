package events

import (
	"context"
	"fmt"

	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"go.uber.org/zap"
)

// Ingester adds companies created by other replicas.
type Ingester interface {
	Ingest(ctx context.Context, company models.Company) (bool, error)
}

// CatalogHandler returns a consumer handler that applies company_created
// events from other sources to catalog. Other event types are ignored. An
// ingest failure is returned so the message is not committed.
func CatalogHandler(catalog Ingester, source string, logger *zap.Logger) func(context.Context, Event) error {
	logger = logger.Named("catalog_sync")
	return func(ctx context.Context, event Event) error {
		if event.Type != CompanyCreated || event.Source == source {
			return nil
		}
		if event.Company == nil {
			return fmt.Errorf("event %s has no company", event.ID)
		}
		added, err := catalog.Ingest(ctx, *event.Company)
		if err != nil {
			return err
		}
		if added {
			logger.Info("Company ingested",
				zap.String("company_id", event.Company.ID),
				zap.String("source", event.Source),
			)
		}
		return nil
	}
}
