package note

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/core/crud"
	"github.com/rahmatfauzi/modular-backend/internal/core/filter"
	"github.com/rahmatfauzi/modular-backend/internal/core/pagination"
	"github.com/rahmatfauzi/modular-backend/internal/core/validation"
	"github.com/rahmatfauzi/modular-backend/internal/user"
)

// NewCrudService wires the /notes resource onto the generic engine. Any
// authenticated user may list and create; per-object gates restrict
// retrieve/update/destroy to the owner or an admin.
func NewCrudService(db *gorm.DB, va *validation.Validator, pageSize int) (*crud.Service[Note, NoteOutput], error) {
	authenticated := crud.NewPermission("Permission Denied", func(ctx context.Context, _ crud.Input) bool {
		actor := user.FromContext(ctx)
		return actor != nil && actor.IsActive
	})
	gates := []crud.Permission{authenticated}

	ownerOrAdmin := crud.NewEntityPermission("Permission Denied", func(ctx context.Context, _ crud.Input, n *Note) bool {
		actor := user.FromContext(ctx)
		if actor == nil || !actor.IsActive {
			return false
		}
		return n.UserID == actor.ID || actor.IsAdmin || actor.IsSuperuser
	})
	objectGates := []crud.EntityPermission[Note]{ownerOrAdmin}

	cfg := crud.Config[Note, NoteOutput]{
		Filters: []filter.Filter{
			filter.MustSearch("note"),
			filter.NewWhere("note", "user_id"),
			filter.NewOrder("notes.id", "id", "note", "created_at", "updated_at"),
		},
		Pagination: pagination.NewPageNumber(pageSize),
		Permissions: map[crud.Op][]crud.Permission{
			crud.OpList:     gates,
			crud.OpRetrieve: gates,
			crud.OpCreate:   gates,
			crud.OpUpdate:   gates,
			crud.OpDestroy:  gates,
		},
		EntityPermissions: map[crud.Op][]crud.EntityPermission[Note]{
			crud.OpRetrieve: objectGates,
			crud.OpUpdate:   objectGates,
			crud.OpDestroy:  objectGates,
		},
		Validate: func(data interface{}, group validation.Group) *internal.AppError {
			return va.ForGroup(data, group)
		},
		NewEntity: func(data interface{}) (*Note, error) {
			dto, ok := data.(*CreateNoteDTO)
			if !ok {
				return nil, errors.New("note: unexpected create payload type")
			}
			return &Note{Note: dto.Note}, nil
		},
		// the owner is always the authenticated caller, never client input
		BeforeCreate: func(ctx context.Context, _ *gorm.DB, n *Note, _ crud.Input) error {
			actorID := internal.UserIDFromContext(ctx)
			if actorID == 0 {
				if actor := user.FromContext(ctx); actor != nil {
					actorID = actor.ID
				}
			}
			if actorID == 0 {
				return internal.ErrAccessTokenInvalid
			}
			n.UserID = actorID
			return nil
		},
		ApplyUpdate: func(n *Note, data interface{}, partial bool) error {
			dto, ok := data.(*UpdateNoteDTO)
			if !ok {
				return errors.New("note: unexpected update payload type")
			}
			if !partial || dto.Note != "" {
				n.Note = dto.Note
			}
			return nil
		},
		IDOf:     func(n *Note) int64 { return n.ID },
		Shallow:  true,
		ToOutput: ToOutput,
	}

	return crud.NewService(db, cfg)
}
