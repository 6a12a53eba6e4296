package cart

import (
	"context"

	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PersistedCart is the CartItem-backed cart of a logged-in user.
type PersistedCart struct {
	db     *gorm.DB
	userID uint
}

func NewPersistedCart(db *gorm.DB, userID uint) *PersistedCart {
	return &PersistedCart{db: db, userID: userID}
}

func (c *PersistedCart) items(ctx context.Context, db *gorm.DB) ([]models.CartItem, error) {
	var items []models.CartItem
	err := db.WithContext(ctx).Where("user_id = ?", c.userID).Order("id").Find(&items).Error
	return items, err
}

// Resolve reads the user's rows without modifying them.
func (c *PersistedCart) Resolve(ctx context.Context) (View, Repair, error) {
	items, err := c.items(ctx, c.db)
	if err != nil {
		return View{}, Repair{}, apperr.Storage(err, "load cart items")
	}
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ServiceID)
	}
	live, err := loadServices(ctx, c.db, dedupe(ids))
	if err != nil {
		return View{}, Repair{}, apperr.Storage(err, "load cart services")
	}

	var (
		repair   Repair
		services []models.Service
		seen     = make(map[uint]bool, len(items))
	)
	for _, it := range items {
		svc, ok := live[it.ServiceID]
		switch {
		case !ok:
			repair.StaleItemIDs = append(repair.StaleItemIDs, it.ID)
		case seen[it.ServiceID]:
			repair.DuplicateItemIDs = append(repair.DuplicateItemIDs, it.ID)
		default:
			seen[it.ServiceID] = true
			services = append(services, svc)
		}
	}
	view := newView(services)
	if len(repair.StaleItemIDs) > 0 {
		view.Warning = WarningItemsRemoved
	}
	return view, repair, nil
}

// ApplyRepair deletes stale and duplicate rows. Rows already gone are ignored,
// so applying the same repair twice is harmless.
func (c *PersistedCart) ApplyRepair(ctx context.Context, r Repair) error {
	ids := append(append([]uint{}, r.StaleItemIDs...), r.DuplicateItemIDs...)
	if len(ids) == 0 {
		return nil
	}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND id IN ?", c.userID, ids).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return apperr.Storage(err, "repair cart")
	}
	log.WithFields(log.Fields{
		"user_id":    c.userID,
		"stale":      r.StaleItemIDs,
		"duplicates": r.DuplicateItemIDs,
	}).Warn("cart repaired")
	return nil
}

func (c *PersistedCart) Add(ctx context.Context, serviceID uint) (Result, error) {
	svc, err := findService(ctx, c.db, serviceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, apperr.NotFound("service")
	}
	if err != nil {
		return Result{}, apperr.Storage(err, "load service")
	}

	outcome := Added
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND service_id = ?", c.userID, serviceID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			outcome = AlreadyInCart
			return nil
		}
		return tx.Create(&models.CartItem{UserID: c.userID, ServiceID: serviceID}).Error
	})
	if err != nil {
		// A concurrent add may have won the unique index.
		if n := c.countFor(ctx, serviceID); n > 0 {
			return Result{Outcome: AlreadyInCart, Service: svc}, nil
		}
		return Result{}, apperr.Storage(err, "add cart item")
	}
	return Result{Outcome: outcome, Service: svc}, nil
}

func (c *PersistedCart) countFor(ctx context.Context, serviceID uint) int64 {
	var n int64
	c.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND service_id = ?", c.userID, serviceID).
		Count(&n)
	return n
}

func (c *PersistedCart) Remove(ctx context.Context, serviceID uint) (Result, error) {
	var removed int64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND service_id = ?", c.userID, serviceID).Delete(&models.CartItem{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return Result{}, apperr.Storage(err, "remove cart item")
	}
	svc, _ := findService(ctx, c.db, serviceID)
	svc.ID = serviceID
	if removed == 0 {
		return Result{Outcome: NotInCart, Service: svc}, nil
	}
	return Result{Outcome: Removed, Service: svc}, nil
}

// Clear removes every row and returns how many services were in the cart.
func (c *PersistedCart) Clear(ctx context.Context) (int, error) {
	var removed int64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ?", c.userID).Delete(&models.CartItem{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, apperr.Storage(err, "clear cart")
	}
	return int(removed), nil
}
