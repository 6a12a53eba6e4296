package cart

import (
	"context"

	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/session"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Merge moves the anonymous session cart into the user's persisted cart.
// Services that are gone or already in the cart are skipped. The session
// cart is cleared once the inserts commit; if they fail nothing is cleared
// and the merged count is 0.
func Merge(ctx context.Context, db *gorm.DB, store session.Store, visitorID string, userID uint) (int, error) {
	if visitorID == "" || userID == 0 {
		return 0, nil
	}
	raw, err := store.Load(ctx, visitorID)
	if err != nil {
		return 0, apperr.Storage(err, "load session cart")
	}
	if len(raw) == 0 {
		return 0, nil
	}
	ids := dedupe(raw)

	merged := 0
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var live []uint
		if err := tx.Model(&models.Service{}).Where("id IN ?", ids).Pluck("id", &live).Error; err != nil {
			return err
		}
		var existing []uint
		if err := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND service_id IN ?", userID, ids).
			Pluck("service_id", &existing).Error; err != nil {
			return err
		}
		liveSet := toSet(live)
		have := toSet(existing)
		for _, id := range ids {
			if !liveSet[id] || have[id] {
				continue
			}
			if err := tx.Create(&models.CartItem{UserID: userID, ServiceID: id}).Error; err != nil {
				return err
			}
			merged++
		}
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("cart merge rolled back")
		return 0, apperr.Storage(err, "merge cart")
	}

	if err := store.Clear(ctx, visitorID); err != nil {
		// The rows are committed; a retry finds them present and skips them.
		log.WithError(err).WithField("visitor", visitorID).Warn("session cart not cleared after merge")
	}
	log.WithFields(log.Fields{"user_id": userID, "merged": merged}).Info("session cart merged")
	return merged, nil
}

func toSet(ids []uint) map[uint]bool {
	m := make(map[uint]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
