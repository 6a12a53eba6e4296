// Package services holds the write paths of the site: accounts, checkout and
// admin mutations, plus the read models behind the public pages.
package services

import (
	"context"
	"strings"

	"github.com/diewo77/gleeful/internal/apperr"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/validation"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const reservedUsername = "admin"

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// RegisterResult tells whether a new account was created or an existing
// customer's password was reset.
type RegisterResult struct {
	User          models.User
	PasswordReset bool
}

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

func (in RegisterInput) validate() validation.Violations {
	v := validation.Violations{}
	if validation.Required("username", in.Username, v) {
		validation.MinLen("username", in.Username, 3, v)
		validation.MaxLen("username", in.Username, 80, v)
	}
	if validation.Required("email", in.Email, v) {
		validation.Email("email", in.Email, v)
		validation.MaxLen("email", in.Email, 120, v)
	}
	if validation.Required("password", in.Password, v) {
		validation.MinLen("password", in.Password, 6, v)
	}
	validation.Equal("password_confirm", in.Password, in.PasswordConfirm, v)
	return v
}

// Register creates a customer account. Registering again with the email of an
// existing customer resets that customer's password and, when the new
// username is free, renames them.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := apperr.Validation(in.validate()); err != nil {
		return RegisterResult{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResult{}, errors.Wrap(err, "hash password")
	}

	var res RegisterResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findUser(tx, "email = ?", in.Email)
		if err != nil {
			return err
		}
		byName, err := findUser(tx, "username = ?", in.Username)
		if err != nil {
			return err
		}

		if existing != nil {
			if existing.IsAdmin {
				log.WithField("email", in.Email).Warn("registration attempt with admin email")
				return apperr.Conflict("email_reserved")
			}
			if existing.Username != in.Username {
				if byName != nil && byName.ID != existing.ID {
					return apperr.Conflict("username_taken")
				}
				existing.Username = in.Username
			}
			existing.PasswordHash = string(hash)
			if err := tx.Save(existing).Error; err != nil {
				return apperr.Storage(err, "reset password")
			}
			res = RegisterResult{User: *existing, PasswordReset: true}
			return nil
		}

		if byName != nil {
			return apperr.Conflict("username_taken")
		}
		if strings.EqualFold(in.Username, reservedUsername) {
			log.WithField("email", in.Email).Warn("registration attempt with reserved username")
			return apperr.Validation(validation.Violations{"username": "reserved"})
		}
		user := models.User{Username: in.Username, Email: in.Email, PasswordHash: string(hash)}
		if err := tx.Create(&user).Error; err != nil {
			return apperr.Storage(err, "create user")
		}
		res = RegisterResult{User: user}
		return nil
	})
	if err != nil {
		return RegisterResult{}, err
	}
	log.WithFields(log.Fields{
		"user_id":  res.User.ID,
		"username": res.User.Username,
		"reset":    res.PasswordReset,
	}).Info("user registered")
	return res, nil
}

// Authenticate checks email and password. Any mismatch is reported as
// apperr.ErrInvalidCredentials without telling which part was wrong.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, apperr.ErrInvalidCredentials
	}
	user, err := findUser(s.db.WithContext(ctx), "email = ?", email)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, apperr.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, apperr.ErrInvalidCredentials
	}
	return *user, nil
}

// User loads one account.
func (s *AccountService) User(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.NotFound("user")
	}
	if err != nil {
		return models.User{}, apperr.Storage(err, "load user")
	}
	return u, nil
}

// Exists is used by the session middleware to drop cookies of deleted users.
func (s *AccountService) Exists(ctx context.Context, id uint) bool {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		log.WithError(err).Warn("user lookup failed")
		return true
	}
	return n > 0
}

func findUser(db *gorm.DB, query string, args ...any) (*models.User, error) {
	var u models.User
	err := db.Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage(err, "find user")
	}
	return &u, nil
}
