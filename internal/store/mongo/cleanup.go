package mongo

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chirino/data-gateway/internal/model"
	"github.com/chirino/data-gateway/internal/observe"
	"github.com/chirino/data-gateway/internal/store"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Cleanup deletes documents whose created_at is older than the retention
// horizon from every collection, in one pass. A retentionDays of zero or less
// falls back to the configured horizon. The first failing collection aborts
// the remaining sweep.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) (store.CleanupReport, error) {
	if retentionDays <= 0 {
		retentionDays = s.cfg.RetentionDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	report := store.CleanupReport{}
	for _, c := range model.Collections() {
		result, err := s.collection(c).DeleteMany(ctx, bson.M{
			"created_at": bson.M{"$lt": cutoff},
		})
		if err != nil {
			return nil, &store.StoreError{Op: "cleanup " + c.String(), Err: err}
		}
		report[c] = result.DeletedCount
		if observe.CleanupDeletedTotal != nil {
			observe.CleanupDeletedTotal.WithLabelValues(c.String()).Add(float64(result.DeletedCount))
		}
		log.Info("Swept old documents", "collection", c, "deleted", result.DeletedCount, "cutoff", cutoff)
	}
	return report, nil
}
