package db

import (
	"testing"

	"github.com/diewo77/gleeful/internal/config"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

func TestMigrateCreatesTables(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, Migrate(conn, config.Database{Driver: "sqlite"}))
	for _, table := range requiredTables {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}

func TestSeedIdempotent(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, AutoMigrate(conn))

	require.NoError(t, Seed(conn))
	require.NoError(t, Seed(conn))

	var users, services, news int64
	conn.Model(&models.User{}).Count(&users)
	conn.Model(&models.Service{}).Count(&services)
	conn.Model(&models.News{}).Count(&news)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 7, services)
	assert.EqualValues(t, 4, news)

	var admin models.User
	require.NoError(t, conn.Where("email = ?", AdminEmail).First(&admin).Error)
	assert.True(t, admin.IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin")))
}

func TestSeedKeepsExistingCatalog(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, AutoMigrate(conn))
	require.NoError(t, conn.Create(&models.Service{Title: "Своя услуга", Description: "d", Category: models.CategoryAdult}).Error)

	require.NoError(t, Seed(conn))
	var services int64
	conn.Model(&models.Service{}).Count(&services)
	assert.EqualValues(t, 1, services)
}

func TestNormalizeDSN(t *testing.T) {
	assert.Equal(t, "", NormalizeDSN("  "))
	assert.Equal(t, "postgres://u:p@h/db", NormalizeDSN(`"postgres://u:p@h/db"`))
	assert.Equal(t, "host=h user=u dbname=d sslmode=disable", NormalizeDSN("host=h   user=u dbname=d"))
	assert.Equal(t, "host=h sslmode=require", NormalizeDSN("host=h sslmode=require"))
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5432 user=gleeful password=secret dbname=party sslmode=disable")
	assert.Equal(t, "postgres://gleeful:secret@db:5432/party?sslmode=disable", got)
	assert.Equal(t, "postgres://x@y/z", ToURLDSN("postgres://x@y/z"))
	assert.Equal(t, "host=db", ToURLDSN("host=db"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:xxxxx@h/db", MaskDSN("postgres://u:secret@h/db"))
	assert.Equal(t, "host=h password=xxxxx dbname=d", MaskDSN("host=h password=secret dbname=d"))
}
