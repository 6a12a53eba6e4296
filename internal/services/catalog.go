package services

import (
	"context"

	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Catalog serves the read-only queries behind public, profile and admin pages.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Stats are the admin dashboard counters.
type Stats struct {
	Services  int64 `json:"services"`
	News      int64 `json:"news"`
	Portfolio int64 `json:"portfolio"`
	Orders    int64 `json:"orders"`
	NewOrders int64 `json:"new_orders"`
	Users     int64 `json:"users"`
}

func notFoundOr(err error, entity, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	return apperr.Storage(err, op)
}

// Services lists the catalog. A non-empty filter is parsed as a category
// (slug, canonical name or alias); an unknown filter lists everything and
// returns ok=false.
func (c *Catalog) Services(ctx context.Context, filter string) ([]models.Service, models.Category, bool, error) {
	q := c.db.WithContext(ctx).Order("id")
	category, ok := models.ParseCategory(filter)
	if ok {
		q = q.Where("category = ?", category)
	}
	var out []models.Service
	if err := q.Find(&out).Error; err != nil {
		return nil, "", false, apperr.Storage(err, "list services")
	}
	return out, category, ok || filter == "", nil
}

// ServicesByNewest is the admin listing, id desc.
func (c *Catalog) ServicesByNewest(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	if err := c.db.WithContext(ctx).Order("id desc").Find(&out).Error; err != nil {
		return nil, apperr.Storage(err, "list services")
	}
	return out, nil
}

func (c *Catalog) FeaturedServices(ctx context.Context, n int) ([]models.Service, error) {
	var out []models.Service
	if err := c.db.WithContext(ctx).Order("id").Limit(n).Find(&out).Error; err != nil {
		return nil, apperr.Storage(err, "featured services")
	}
	return out, nil
}

func (c *Catalog) Service(ctx context.Context, id uint) (models.Service, error) {
	var s models.Service
	if err := c.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return models.Service{}, notFoundOr(err, "service", "load service")
	}
	return s, nil
}

// News lists news newest first; limit <= 0 means all.
func (c *Catalog) News(ctx context.Context, limit int) ([]models.News, error) {
	q := c.db.WithContext(ctx).Order("date_posted desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.News
	if err := q.Find(&out).Error; err != nil {
		return nil, apperr.Storage(err, "list news")
	}
	return out, nil
}

func (c *Catalog) NewsItem(ctx context.Context, id uint) (models.News, error) {
	var n models.News
	if err := c.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return models.News{}, notFoundOr(err, "news", "load news")
	}
	return n, nil
}

func (c *Catalog) Portfolio(ctx context.Context) ([]models.Portfolio, error) {
	var out []models.Portfolio
	if err := c.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&out).Error; err != nil {
		return nil, apperr.Storage(err, "list portfolio")
	}
	return out, nil
}

func (c *Catalog) PortfolioItem(ctx context.Context, id uint) (models.Portfolio, error) {
	var p models.Portfolio
	if err := c.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return models.Portfolio{}, notFoundOr(err, "portfolio", "load portfolio")
	}
	return p, nil
}

// UserOrders returns a user's orders with items and services, newest first.
// limit <= 0 means all.
func (c *Catalog) UserOrders(ctx context.Context, userID uint, limit int) ([]models.Order, error) {
	q := c.db.WithContext(ctx).
		Preload("Items.Service").
		Where("user_id = ?", userID).
		Order("date_created desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, apperr.Storage(err, "list user orders")
	}
	return out, nil
}

func (c *Catalog) CountUserOrders(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, apperr.Storage(err, "count user orders")
	}
	return n, nil
}

// Orders is the admin listing with the ordering user joined.
func (c *Catalog) Orders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := c.db.WithContext(ctx).
		Preload("User").
		Order("date_created desc").Order("id desc").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Storage(err, "list orders")
	}
	return out, nil
}

// Order loads one order with its user, items and services.
func (c *Catalog) Order(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := c.db.WithContext(ctx).Preload("User").Preload("Items.Service").First(&o, id).Error
	if err != nil {
		return models.Order{}, notFoundOr(err, "order", "load order")
	}
	return o, nil
}

func (c *Catalog) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := c.db.WithContext(ctx)
	counts := []struct {
		model any
		dst   *int64
		where []any
	}{
		{&models.Service{}, &st.Services, nil},
		{&models.News{}, &st.News, nil},
		{&models.Portfolio{}, &st.Portfolio, nil},
		{&models.Order{}, &st.Orders, nil},
		{&models.Order{}, &st.NewOrders, []any{"status = ?", models.OrderStatusNew}},
		{&models.User{}, &st.Users, nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != nil {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return Stats{}, apperr.Storage(err, "dashboard stats")
		}
	}
	return st, nil
}
