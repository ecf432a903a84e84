package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"optic-app/grn"
	"optic-app/models"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const batchCacheTTL = 5 * time.Minute

// BatchRepository backs the batch prompt for batch-managed products. Listings
// are cached in Redis since batch masters change rarely compared to how often
// the intake screen asks for them; the cache is best effort and every miss or
// Redis outage falls through to the database.
type BatchRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewBatchRepository(db *gorm.DB, rdb *redis.Client) *BatchRepository {
	return &BatchRepository{db: db, rdb: rdb}
}

func batchCacheKey(detailID, locationID int64) string {
	return fmt.Sprintf("grn:batches:%d:%d", locationID, detailID)
}

// BatchesForDetail lists in-stock batches for a product at a location, oldest
// expiry first.
func (r *BatchRepository) BatchesForDetail(ctx context.Context, detailID, locationID int64) ([]grn.BatchCode, error) {
	if cached, ok := r.fromCache(ctx, detailID, locationID); ok {
		return cached, nil
	}

	var rows []models.Batch
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ? AND quantity > 0", detailID, locationID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	batches := make([]grn.BatchCode, 0, len(rows))
	for _, b := range rows {
		batches = append(batches, grn.BatchCode{
			Code:     b.BatchCode,
			Expiry:   b.Expiry,
			MRP:      decimal.NewFromFloat(b.Mrp),
			DetailID: detailID,
		})
	}

	slices.SortFunc(batches, func(a, b grn.BatchCode) int {
		switch {
		case a.Expiry < b.Expiry:
			return -1
		case a.Expiry > b.Expiry:
			return 1
		default:
			return 0
		}
	})

	r.toCache(ctx, detailID, locationID, batches)
	return batches, nil
}

func (r *BatchRepository) fromCache(ctx context.Context, detailID, locationID int64) ([]grn.BatchCode, bool) {
	if r.rdb == nil {
		return nil, false
	}

	raw, err := r.rdb.Get(ctx, batchCacheKey(detailID, locationID)).Result()
	if err != nil {
		return nil, false
	}

	var batches []grn.BatchCode
	if err := json.Unmarshal([]byte(raw), &batches); err != nil {
		return nil, false
	}
	return batches, true
}

func (r *BatchRepository) toCache(ctx context.Context, detailID, locationID int64, batches []grn.BatchCode) {
	if r.rdb == nil {
		return
	}
	raw, err := json.Marshal(batches)
	if err != nil {
		return
	}
	r.rdb.Set(ctx, batchCacheKey(detailID, locationID), raw, batchCacheTTL)
}

// Invalidate drops the cached listing after stock for the batch moves.
func (r *BatchRepository) Invalidate(ctx context.Context, detailID, locationID int64) {
	if r.rdb == nil {
		return
	}
	r.rdb.Del(ctx, batchCacheKey(detailID, locationID))
}
