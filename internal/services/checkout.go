package services

import (
	"context"
	"sync"
	"time"

	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/cart"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/session"
	"github.com/diewo77/gleeful/validation"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CheckoutInput struct {
	Phone     string
	EventDate string
}

// Receipt is what a successful checkout returns.
type Receipt struct {
	OrderID uint
	Total   decimal.Decimal
}

// CheckoutService turns a user's cart into an order.
type CheckoutService struct {
	db    *gorm.DB
	store session.Store
	// Now is the clock used to reject event dates in the past.
	Now func() time.Time

	mu    sync.Mutex
	locks map[uint]*userLock
}

// userLock is dropped from the map once nobody holds or waits for it.
type userLock struct {
	sync.Mutex
	refs int
}

func NewCheckoutService(db *gorm.DB, store session.Store) *CheckoutService {
	return &CheckoutService{db: db, store: store, Now: time.Now, locks: make(map[uint]*userLock)}
}

func (s *CheckoutService) lock(userID uint) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

func (in CheckoutInput) validate(today time.Time) (time.Time, validation.Violations) {
	v := validation.Violations{}
	if validation.Required("phone", in.Phone, v) {
		validation.MinLen("phone", in.Phone, 10, v)
		validation.MaxLen("phone", in.Phone, 20, v)
	}
	var date time.Time
	if validation.Required("event_date", in.EventDate, v) {
		date = validation.DateNotBefore("event_date", in.EventDate, today, v)
	}
	return date, v
}

// Checkout places an order for everything in the user's cart. The order, its
// items and the cart cleanup commit together or not at all. Checkouts of the
// same user are serialized within this process.
func (s *CheckoutService) Checkout(ctx context.Context, visitorID string, userID uint, in CheckoutInput) (Receipt, error) {
	if userID == 0 {
		return Receipt{}, apperr.ErrForbidden
	}
	unlock := s.lock(userID)
	defer unlock()

	if _, err := cart.Merge(ctx, s.db, s.store, visitorID, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("merge before checkout failed")
	}

	pc := cart.NewPersistedCart(s.db, userID)
	view, repair, err := pc.Resolve(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if view.Empty() {
		if !repair.Empty() {
			if err := pc.ApplyRepair(ctx, repair); err != nil {
				return Receipt{}, err
			}
		}
		return Receipt{}, apperr.ErrEmptyCart
	}

	date, violations := in.validate(s.Now())
	if err := apperr.Validation(violations); err != nil {
		return Receipt{}, err
	}

	order := models.Order{
		UserID:       userID,
		TotalPrice:   view.Total,
		Status:       models.OrderStatusNew,
		ContactPhone: in.Phone,
		EventDate:    date,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "User").Create(&order).Error; err != nil {
			return err
		}
		items := make([]models.OrderItem, 0, len(view.Services))
		for _, svc := range view.Services {
			items = append(items, models.OrderItem{OrderID: order.ID, ServiceID: svc.ID, PriceAtMoment: svc.Price})
		}
		if err := tx.Omit("Service").Create(&items).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("checkout rolled back")
		return Receipt{}, apperr.Storage(err, "place order")
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"order_id": order.ID,
		"items":    view.Count(),
		"total":    view.Total.StringFixed(2),
	}).Info("order placed")
	return Receipt{OrderID: order.ID, Total: view.Total}, nil
}
