package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/catalog-crawler/internal/entity"
	"github.com/user/catalog-crawler/internal/repository"
	"github.com/user/catalog-crawler/pkg/metrics"
)

// Reconciler writes a run's listings into the product catalog.
type Reconciler struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewReconciler(products repository.ProductRepository, logger *zap.Logger) *Reconciler {
	return &Reconciler{products: products, logger: logger}
}

// Reconcile upserts every listing and returns how many writes succeeded. A
// failed write is logged and skipped.
func (r *Reconciler) Reconcile(ctx context.Context, websiteID string, listings []entity.CanonicalListing) int {
	var created, updated, failed int
	for _, l := range listings {
		isNew, err := r.products.Upsert(ctx, websiteID, l)
		if err != nil {
			failed++
			metrics.ProductUpsertsTotal.WithLabelValues("failed").Inc()
			r.logger.Warn("failed to store product", zap.String("url", l.URL), zap.Error(err))
			continue
		}
		if isNew {
			created++
			metrics.ProductUpsertsTotal.WithLabelValues("created").Inc()
		} else {
			updated++
			metrics.ProductUpsertsTotal.WithLabelValues("updated").Inc()
		}
	}

	r.logger.Info("catalog reconciled",
		zap.String("website_id", websiteID),
		zap.Int("created", created),
		zap.Int("updated", updated),
		zap.Int("failed", failed),
	)
	return created + updated
}
