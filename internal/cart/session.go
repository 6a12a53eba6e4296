package cart

import (
	"context"

	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/session"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionCart is the anonymous cart kept in the session store.
// Mutations take effect immediately; there is no transaction.
type SessionCart struct {
	db        *gorm.DB
	store     session.Store
	visitorID string
}

func NewSessionCart(db *gorm.DB, store session.Store, visitorID string) *SessionCart {
	return &SessionCart{db: db, store: store, visitorID: visitorID}
}

func (c *SessionCart) load(ctx context.Context) ([]uint, error) {
	if c.visitorID == "" {
		return nil, nil
	}
	ids, err := c.store.Load(ctx, c.visitorID)
	if err != nil {
		return nil, apperr.Storage(err, "load session cart")
	}
	return ids, nil
}

func (c *SessionCart) save(ctx context.Context, ids []uint) error {
	if c.visitorID == "" {
		return errors.New("no visitor session")
	}
	if err := c.store.Save(ctx, c.visitorID, ids); err != nil {
		return apperr.Storage(err, "save session cart")
	}
	return nil
}

// Resolve dedupes the stored ids in first-seen order and drops the ones
// without a live service. A rewrite is requested whenever the stored list
// differs from the pruned one.
func (c *SessionCart) Resolve(ctx context.Context) (View, Repair, error) {
	raw, err := c.load(ctx)
	if err != nil {
		return View{}, Repair{}, err
	}
	ids := dedupe(raw)
	live, err := loadServices(ctx, c.db, ids)
	if err != nil {
		return View{}, Repair{}, apperr.Storage(err, "load cart services")
	}
	kept := make([]uint, 0, len(ids))
	var services []models.Service
	for _, id := range ids {
		if svc, ok := live[id]; ok {
			kept = append(kept, id)
			services = append(services, svc)
		}
	}
	view := newView(services)
	var repair Repair
	if len(kept) != len(ids) {
		view.Warning = WarningItemsRemoved
	}
	if len(kept) != len(raw) {
		repair = Repair{SessionIDs: kept, RewriteSession: true}
	}
	return view, repair, nil
}

func (c *SessionCart) ApplyRepair(ctx context.Context, r Repair) error {
	if !r.RewriteSession {
		return nil
	}
	if err := c.save(ctx, r.SessionIDs); err != nil {
		return err
	}
	log.WithFields(log.Fields{"visitor": c.visitorID, "ids": r.SessionIDs}).Warn("session cart pruned")
	return nil
}

func (c *SessionCart) Add(ctx context.Context, serviceID uint) (Result, error) {
	svc, err := findService(ctx, c.db, serviceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, apperr.NotFound("service")
	}
	if err != nil {
		return Result{}, apperr.Storage(err, "load service")
	}
	ids, err := c.load(ctx)
	if err != nil {
		return Result{}, err
	}
	for _, id := range ids {
		if id == serviceID {
			return Result{Outcome: AlreadyInCart, Service: svc}, nil
		}
	}
	if err := c.save(ctx, append(ids, serviceID)); err != nil {
		return Result{}, err
	}
	return Result{Outcome: Added, Service: svc}, nil
}

func (c *SessionCart) Remove(ctx context.Context, serviceID uint) (Result, error) {
	ids, err := c.load(ctx)
	if err != nil {
		return Result{}, err
	}
	kept := ids[:0:0]
	for _, id := range ids {
		if id != serviceID {
			kept = append(kept, id)
		}
	}
	svc, _ := findService(ctx, c.db, serviceID)
	svc.ID = serviceID
	if len(kept) == len(ids) {
		return Result{Outcome: NotInCart, Service: svc}, nil
	}
	if err := c.save(ctx, kept); err != nil {
		return Result{}, err
	}
	return Result{Outcome: Removed, Service: svc}, nil
}

// Clear empties the session list and returns how many distinct services it held.
func (c *SessionCart) Clear(ctx context.Context) (int, error) {
	ids, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	if c.visitorID == "" {
		return 0, nil
	}
	if err := c.store.Clear(ctx, c.visitorID); err != nil {
		return 0, apperr.Storage(err, "clear session cart")
	}
	return len(dedupe(ids)), nil
}
