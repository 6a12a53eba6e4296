package policy

import (
	"context"

	"github.com/diewo77/gleeful/gate"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Resource types checked by the gate.
const (
	ResourceService   = "service"
	ResourceNews      = "news"
	ResourcePortfolio = "portfolio"
	ResourceOrder     = "order"
	ResourceCart      = "cart"
	// ResourceAdmin is the admin panel itself.
	ResourceAdmin = "admin"
)

var (
	// AdminProfile grants everything.
	AdminProfile = gate.NewStaticProfile("admin", gate.PermissionSuperAdmin)
	// CustomerProfile is given to every registered non-admin user.
	CustomerProfile = gate.NewStaticProfile("customer",
		gate.Permission(ResourceCart+":*"),
		gate.NewPermission(ResourceOrder, gate.ActionCreate),
		gate.NewPermission(ResourceOrder, gate.ActionView),
		gate.NewPermission(ResourceOrder, gate.ActionList),
	)
)

// DBProfileResolver derives a user's profile from the is_admin column.
type DBProfileResolver struct {
	DB *gorm.DB
}

func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve returns nil, nil for unknown users.
func (r *DBProfileResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Select("id", "is_admin").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolve profile")
	}
	if user.IsAdmin {
		return AdminProfile, nil
	}
	return CustomerProfile, nil
}
