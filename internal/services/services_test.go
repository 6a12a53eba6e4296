package services

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedService(t *testing.T, db *gorm.DB, title string, price int64) models.Service {
	t.Helper()
	s := models.Service{Title: title, Description: title, Price: decimal.NewFromInt(price), Category: models.CategoryAdult}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func seedUser(t *testing.T, db *gorm.DB, name string, admin bool) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Username: name, Email: name + "@example.com", PasswordHash: string(hash), IsAdmin: admin}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func newAdminService(db *gorm.DB) *AdminService {
	return NewAdminService(db, policy.NewAuthGate(db, time.Minute).AdminGuard())
}

func addToCart(t *testing.T, db *gorm.DB, userID uint, services ...models.Service) {
	t.Helper()
	for _, s := range services {
		require.NoError(t, db.Create(&models.CartItem{UserID: userID, ServiceID: s.ID}).Error)
	}
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

var ctx = context.Background()
