package user

import (
	"context"
	"errors"
	"time"
)

// User is the account entity. The password is only ever stored as a bcrypt
// hash and never serialized.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	IsAdmin      bool      `json:"is_admin" gorm:"column:is_admin;default:false"`
	IsSuperuser  bool      `json:"is_superuser" gorm:"column:is_superuser;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`

	Groups      []Group      `json:"groups,omitempty" gorm:"many2many:user_groups"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:user_permissions"`
}

func (User) TableName() string {
	return "users"
}

// Group aggregates permissions so they can be granted as a set.
type Group struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"uniqueIndex;not null"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:group_permissions"`
}

func (Group) TableName() string {
	return "groups"
}

// Permission is a named capability; codename is the stable key checks run
// against.
type Permission struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Codename string `json:"codename" gorm:"uniqueIndex;not null"`
	Name     string `json:"name"`
}

func (Permission) TableName() string {
	return "permissions"
}

// HasPermission short-circuits true for active superusers, then checks the
// user's own permissions and finally each group's permissions.
func (u *User) HasPermission(codename string) bool {
	if u.IsActive && u.IsSuperuser {
		return true
	}
	for _, p := range u.Permissions {
		if p.Codename == codename {
			return true
		}
	}
	for _, g := range u.Groups {
		for _, p := range g.Permissions {
			if p.Codename == codename {
				return true
			}
		}
	}
	return false
}

var ErrNotFound = errors.New("user not found")

type userCtxKey struct{}

// NewContext stores the authenticated user for downstream permission checks.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// FromContext returns the authenticated user, or nil for anonymous requests.
func FromContext(ctx context.Context) *User {
	if ctx == nil {
		return nil
	}
	if u, ok := ctx.Value(userCtxKey{}).(*User); ok {
		return u
	}
	return nil
}
