package user

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/core/crud"
	"github.com/rahmatfauzi/modular-backend/internal/core/filter"
	"github.com/rahmatfauzi/modular-backend/internal/core/pagination"
	"github.com/rahmatfauzi/modular-backend/internal/core/validation"
)

// NewCrudService wires the admin-facing /users resource onto the generic
// CRUD engine: search over username/email, structured where conditions, page
// pagination and admin-only gates on every operation.
func NewCrudService(db *gorm.DB, va *validation.Validator, bcryptCost, pageSize int) (*crud.Service[User, UserOutput], error) {
	adminOnly := crud.NewPermission("Permission Denied", func(ctx context.Context, _ crud.Input) bool {
		actor := FromContext(ctx)
		return actor != nil && actor.IsActive && (actor.IsAdmin || actor.IsSuperuser)
	})
	gates := []crud.Permission{adminOnly}

	cfg := crud.Config[User, UserOutput]{
		BaseQuery: func(tx *gorm.DB) *gorm.DB {
			return tx.Preload("Permissions").Preload("Groups.Permissions")
		},
		Filters: []filter.Filter{
			filter.MustSearch("username", "email"),
			filter.NewWhere("username", "email", "is_active", "is_admin"),
			filter.NewOrder("users.id", "id", "username", "email", "created_at"),
		},
		Pagination: pagination.NewPageNumber(pageSize),
		Permissions: map[crud.Op][]crud.Permission{
			crud.OpList:     gates,
			crud.OpRetrieve: gates,
			crud.OpCreate:   gates,
			crud.OpUpdate:   gates,
			crud.OpDestroy:  gates,
		},
		Validate: func(data interface{}, group validation.Group) *internal.AppError {
			return va.ForGroup(data, group)
		},
		NewEntity: func(data interface{}) (*User, error) {
			dto, ok := data.(*CreateUserDTO)
			if !ok {
				return nil, errors.New("user: unexpected create payload type")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcryptCost)
			if err != nil {
				return nil, err
			}
			u := &User{
				Username:     dto.Username,
				Email:        dto.Email,
				PasswordHash: string(hash),
				IsActive:     true,
			}
			if dto.IsActive != nil {
				u.IsActive = *dto.IsActive
			}
			if dto.IsAdmin != nil {
				u.IsAdmin = *dto.IsAdmin
			}
			return u, nil
		},
		ApplyUpdate: func(u *User, data interface{}, partial bool) error {
			dto, ok := data.(*UpdateUserDTO)
			if !ok {
				return errors.New("user: unexpected update payload type")
			}
			if !partial || dto.Username != "" {
				u.Username = dto.Username
			}
			if !partial || dto.Email != "" {
				u.Email = dto.Email
			}
			if dto.IsActive != nil {
				u.IsActive = *dto.IsActive
			}
			if dto.IsAdmin != nil {
				u.IsAdmin = *dto.IsAdmin
			}
			return nil
		},
		IDOf:     func(u *User) int64 { return u.ID },
		ToOutput: ToOutput,
	}

	return crud.NewService(db, cfg)
}
