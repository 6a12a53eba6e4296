// Package cart implements the visitor cart: a persisted cart for logged-in
// users and a session cart for anonymous visitors, behind one interface.
//
// Reads never write. Resolve returns the current view plus the Repair needed
// to bring storage in line with it (stale rows, duplicates, dropped ids);
// ApplyRepair performs it. Contents does both.
package cart

import (
	"context"

	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/session"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WarningItemsRemoved is set on a View when unavailable services were dropped.
const WarningItemsRemoved = "cart_items_removed"

// View is the resolved cart: live services in cart order and their total.
type View struct {
	Services []models.Service
	Total    decimal.Decimal
	Warning  string
}

func newView(services []models.Service) View {
	return View{Services: services, Total: models.SumPrices(services)}
}

// Count returns the number of services in the cart.
func (v View) Count() int { return len(v.Services) }

// Empty reports whether nothing resolved.
func (v View) Empty() bool { return len(v.Services) == 0 }

// Has reports whether the service is in the cart.
func (v View) Has(serviceID uint) bool {
	for _, s := range v.Services {
		if s.ID == serviceID {
			return true
		}
	}
	return false
}

// IDs returns the service ids in cart order.
func (v View) IDs() []uint {
	ids := make([]uint, len(v.Services))
	for i, s := range v.Services {
		ids[i] = s.ID
	}
	return ids
}

// Repair describes storage fixes found while resolving.
type Repair struct {
	// StaleItemIDs are CartItem rows whose service no longer exists.
	StaleItemIDs []uint
	// DuplicateItemIDs are extra CartItem rows for a service already in the cart.
	DuplicateItemIDs []uint
	// SessionIDs is the pruned session list to write back when RewriteSession is set.
	SessionIDs     []uint
	RewriteSession bool
}

// Empty reports whether applying r would change nothing.
func (r Repair) Empty() bool {
	return len(r.StaleItemIDs) == 0 && len(r.DuplicateItemIDs) == 0 && !r.RewriteSession
}

// Outcome describes what a mutation did.
type Outcome int

const (
	Added Outcome = iota
	AlreadyInCart
	Removed
	NotInCart
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case AlreadyInCart:
		return "already_in_cart"
	case Removed:
		return "removed"
	case NotInCart:
		return "not_in_cart"
	}
	return "unknown"
}

// Result is returned by Add and Remove.
type Result struct {
	Outcome Outcome
	Service models.Service
}

// VisitorCart is the cart of one visitor, persisted or session backed.
type VisitorCart interface {
	Resolve(ctx context.Context) (View, Repair, error)
	ApplyRepair(ctx context.Context, r Repair) error
	Add(ctx context.Context, serviceID uint) (Result, error)
	Remove(ctx context.Context, serviceID uint) (Result, error)
	Clear(ctx context.Context) (int, error)
}

// For picks the cart implementation for a visitor: persisted when userID is
// set, the session cart otherwise.
func For(db *gorm.DB, store session.Store, userID uint, visitorID string) VisitorCart {
	if userID != 0 {
		return NewPersistedCart(db, userID)
	}
	return NewSessionCart(db, store, visitorID)
}

// Contents resolves the cart and applies any repair.
func Contents(ctx context.Context, c VisitorCart) (View, error) {
	view, repair, err := c.Resolve(ctx)
	if err != nil {
		return View{}, err
	}
	if !repair.Empty() {
		if err := c.ApplyRepair(ctx, repair); err != nil {
			return View{}, err
		}
	}
	return view, nil
}

// dedupe keeps the first occurrence of every id.
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// loadServices fetches the live services among ids, keyed by id.
func loadServices(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]models.Service, error) {
	out := make(map[uint]models.Service, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var services []models.Service
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&services).Error; err != nil {
		return nil, err
	}
	for _, s := range services {
		out[s.ID] = s
	}
	return out, nil
}

func findService(ctx context.Context, db *gorm.DB, id uint) (models.Service, error) {
	var s models.Service
	err := db.WithContext(ctx).First(&s, id).Error
	return s, err
}
