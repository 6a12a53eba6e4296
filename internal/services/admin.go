package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/gleeful/gate"
	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/policy"
	"github.com/diewo77/gleeful/validation"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Guard decides whether a user may perform action on a resource type.
type Guard interface {
	Authorize(ctx context.Context, userID uint, resourceType string, action gate.Action) error
}

type ServiceInput struct {
	Title       string
	Description string
	Price       string
	Category    string
	ImageURL    string
}

type NewsInput struct {
	Title    string
	Content  string
	ImageURL string
}

type PortfolioInput struct {
	Title     string
	Category  string
	ImageURL  string
	EventType string
}

// AdminService implements catalog, content and order management. Every
// operation checks the guard before touching storage.
type AdminService struct {
	db    *gorm.DB
	guard Guard
	Now   func() time.Time
}

func NewAdminService(db *gorm.DB, guard Guard) *AdminService {
	return &AdminService{db: db, guard: guard, Now: time.Now}
}

// mutate authorizes actor for action on resource and runs fn in one
// transaction. Errors that are not already application errors become
// storage errors.
func (s *AdminService) mutate(ctx context.Context, actor uint, resource string, action gate.Action, fn func(tx *gorm.DB) error) error {
	op := string(action) + " " + resource
	if err := s.guard.Authorize(ctx, actor, resource, action); err != nil {
		log.WithFields(log.Fields{"user_id": actor, "op": op}).Warn("admin operation denied")
		return err
	}
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		log.WithFields(log.Fields{"user_id": actor, "op": op}).Info("admin operation")
		return nil
	}
	if isAppError(err) {
		return err
	}
	log.WithError(err).WithField("op", op).Error("admin operation failed")
	return apperr.Storage(err, op)
}

func isAppError(err error) bool {
	var verr *apperr.ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrConflict) ||
		errors.Is(err, apperr.ErrForbidden) ||
		errors.Is(err, apperr.ErrStorage)
}

// first loads one row by id, reporting a missing row as apperr.ErrNotFound.
func first(tx *gorm.DB, dst any, id uint, entity string) error {
	err := tx.First(dst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	return err
}

func (in ServiceInput) parse() (models.Service, error) {
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.MaxLen("title", in.Title, 200, v)
	validation.Required("description", in.Description, v)
	validation.MaxLen("image_url", in.ImageURL, 300, v)
	var price decimal.Decimal
	if validation.Required("price", in.Price, v) {
		price = validation.PositivePrice("price", in.Price, v)
	}
	category, ok := models.ParseCategory(in.Category)
	if !ok {
		v.Add("category", "invalid_category")
	}
	if err := apperr.Validation(v); err != nil {
		return models.Service{}, err
	}
	return models.Service{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Category:    category,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}, nil
}

func (s *AdminService) CreateService(ctx context.Context, actor uint, in ServiceInput) (models.Service, error) {
	var out models.Service
	err := s.mutate(ctx, actor, policy.ResourceService, gate.ActionCreate, func(tx *gorm.DB) error {
		svc, err := in.parse()
		if err != nil {
			return err
		}
		if err := tx.Create(&svc).Error; err != nil {
			return err
		}
		out = svc
		return nil
	})
	return out, err
}

// UpdateService changes a service. Existing orders keep their price snapshots.
func (s *AdminService) UpdateService(ctx context.Context, actor, id uint, in ServiceInput) (models.Service, error) {
	var out models.Service
	err := s.mutate(ctx, actor, policy.ResourceService, gate.ActionUpdate, func(tx *gorm.DB) error {
		parsed, err := in.parse()
		if err != nil {
			return err
		}
		if err := first(tx, &out, id, "service"); err != nil {
			return err
		}
		out.Title, out.Description, out.Price = parsed.Title, parsed.Description, parsed.Price
		out.Category, out.ImageURL = parsed.Category, parsed.ImageURL
		return tx.Save(&out).Error
	})
	return out, err
}

// DeleteService removes a service and every cart row pointing at it. A
// service referenced by an order cannot be deleted.
func (s *AdminService) DeleteService(ctx context.Context, actor, id uint) error {
	return s.mutate(ctx, actor, policy.ResourceService, gate.ActionDelete, func(tx *gorm.DB) error {
		var svc models.Service
		if err := first(tx, &svc, id, "service"); err != nil {
			return err
		}
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("service_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return apperr.Conflict("service_in_orders")
		}
		if err := tx.Where("service_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&svc).Error
	})
}

func (in NewsInput) parse() (models.News, error) {
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.MaxLen("title", in.Title, 200, v)
	validation.Required("content", in.Content, v)
	validation.MaxLen("image_url", in.ImageURL, 300, v)
	if err := apperr.Validation(v); err != nil {
		return models.News{}, err
	}
	return models.News{
		Title:    strings.TrimSpace(in.Title),
		Content:  strings.TrimSpace(in.Content),
		ImageURL: strings.TrimSpace(in.ImageURL),
	}, nil
}

func (s *AdminService) CreateNews(ctx context.Context, actor uint, in NewsInput) (models.News, error) {
	var out models.News
	err := s.mutate(ctx, actor, policy.ResourceNews, gate.ActionCreate, func(tx *gorm.DB) error {
		n, err := in.parse()
		if err != nil {
			return err
		}
		n.DatePosted = s.Now()
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
		out = n
		return nil
	})
	return out, err
}

func (s *AdminService) UpdateNews(ctx context.Context, actor, id uint, in NewsInput) (models.News, error) {
	var out models.News
	err := s.mutate(ctx, actor, policy.ResourceNews, gate.ActionUpdate, func(tx *gorm.DB) error {
		parsed, err := in.parse()
		if err != nil {
			return err
		}
		if err := first(tx, &out, id, "news"); err != nil {
			return err
		}
		out.Title, out.Content, out.ImageURL = parsed.Title, parsed.Content, parsed.ImageURL
		return tx.Save(&out).Error
	})
	return out, err
}

func (s *AdminService) DeleteNews(ctx context.Context, actor, id uint) error {
	return s.mutate(ctx, actor, policy.ResourceNews, gate.ActionDelete, func(tx *gorm.DB) error {
		var n models.News
		if err := first(tx, &n, id, "news"); err != nil {
			return err
		}
		return tx.Delete(&n).Error
	})
}

func (in PortfolioInput) parse() (models.Portfolio, error) {
	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.MaxLen("title", in.Title, 200, v)
	validation.Required("image_url", in.ImageURL, v)
	validation.MaxLen("image_url", in.ImageURL, 300, v)
	validation.MaxLen("event_type", in.EventType, 100, v)
	category, ok := models.ParseCategory(in.Category)
	if !ok {
		if strings.TrimSpace(in.Category) == "" {
			v.Add("category", "required")
		} else {
			v.Add("category", "invalid_category")
		}
	}
	if err := apperr.Validation(v); err != nil {
		return models.Portfolio{}, err
	}
	return models.Portfolio{
		Title:     strings.TrimSpace(in.Title),
		Category:  category,
		ImageURL:  strings.TrimSpace(in.ImageURL),
		EventType: strings.TrimSpace(in.EventType),
	}, nil
}

func (s *AdminService) CreatePortfolio(ctx context.Context, actor uint, in PortfolioInput) (models.Portfolio, error) {
	var out models.Portfolio
	err := s.mutate(ctx, actor, policy.ResourcePortfolio, gate.ActionCreate, func(tx *gorm.DB) error {
		p, err := in.parse()
		if err != nil {
			return err
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (s *AdminService) UpdatePortfolio(ctx context.Context, actor, id uint, in PortfolioInput) (models.Portfolio, error) {
	var out models.Portfolio
	err := s.mutate(ctx, actor, policy.ResourcePortfolio, gate.ActionUpdate, func(tx *gorm.DB) error {
		parsed, err := in.parse()
		if err != nil {
			return err
		}
		if err := first(tx, &out, id, "portfolio"); err != nil {
			return err
		}
		out.Title, out.Category, out.ImageURL, out.EventType = parsed.Title, parsed.Category, parsed.ImageURL, parsed.EventType
		return tx.Save(&out).Error
	})
	return out, err
}

func (s *AdminService) DeletePortfolio(ctx context.Context, actor, id uint) error {
	return s.mutate(ctx, actor, policy.ResourcePortfolio, gate.ActionDelete, func(tx *gorm.DB) error {
		var p models.Portfolio
		if err := first(tx, &p, id, "portfolio"); err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}

// UpdateOrderStatus moves an order to status. Completed and cancelled
// orders cannot be moved anywhere else.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, actor, orderID uint, status string) (models.Order, error) {
	var out models.Order
	err := s.mutate(ctx, actor, policy.ResourceOrder, gate.ActionUpdate, func(tx *gorm.DB) error {
		next := models.OrderStatus(strings.TrimSpace(status))
		if !next.Valid() {
			return apperr.Validation(validation.Violations{"status": "invalid_status"})
		}
		if err := first(tx, &out, orderID, "order"); err != nil {
			return err
		}
		if !out.Status.CanTransition(next) {
			return apperr.Conflict("order_closed")
		}
		if out.Status == next {
			return nil
		}
		out.Status = next
		return tx.Model(&out).Update("status", next).Error
	})
	return out, err
}

// DeleteOrder removes an order with its items.
func (s *AdminService) DeleteOrder(ctx context.Context, actor, orderID uint) error {
	return s.mutate(ctx, actor, policy.ResourceOrder, gate.ActionDelete, func(tx *gorm.DB) error {
		var o models.Order
		if err := first(tx, &o, orderID, "order"); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&o).Error
	})
}
