package crud

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/rahmatfauzi/modular-backend/internal"
	"github.com/rahmatfauzi/modular-backend/internal/core/filter"
	"github.com/rahmatfauzi/modular-backend/internal/core/pagination"
	"github.com/rahmatfauzi/modular-backend/internal/core/validation"
	"github.com/rahmatfauzi/modular-backend/pkg/logger"
)

// Hook runs inside the operation's transaction; returning an error aborts the
// operation and rolls everything back.
type Hook[E any] func(ctx context.Context, tx *gorm.DB, entity *E, in Input) error

// Config assembles a Service. Everything is optional except ToOutput;
// NewEntity, ApplyUpdate and IDOf are required only for the operations that
// use them.
type Config[E any, O any] struct {
	Logger *slog.Logger

	// BaseQuery customizes the root query (joins, scoping). Applied before
	// filters on list and before the id lookup on the other operations.
	BaseQuery func(tx *gorm.DB) *gorm.DB

	Filters    []filter.Filter
	Pagination pagination.Strategy

	Permissions       map[Op][]Permission
	EntityPermissions map[Op][]EntityPermission[E]

	// Validate checks the decoded body DTO for create/update. Nil skips
	// payload validation.
	Validate func(data interface{}, group validation.Group) *internal.AppError

	// NewEntity builds a fresh entity from the create payload. It must never
	// copy a client-supplied id.
	NewEntity func(data interface{}) (*E, error)

	// ApplyUpdate merges the update payload into the fetched entity. For
	// partial updates only the supplied fields may be touched.
	ApplyUpdate func(entity *E, data interface{}, partial bool) error

	// IDOf extracts the primary key, used to re-fetch the full representation
	// after a write. When nil the re-fetch is skipped.
	IDOf func(entity *E) int64

	// Shallow maps the in-memory entity after a write instead of re-fetching
	// the full representation.
	Shallow bool

	BeforeCreate  Hook[E]
	AfterCreate   Hook[E]
	BeforeUpdate  Hook[E]
	AfterUpdate   Hook[E]
	BeforeDestroy Hook[E]
	AfterDestroy  Hook[E]

	// ToOutput projects an entity into the response DTO. Required.
	ToOutput func(entity *E) O
}

// Service orchestrates CRUD operations for one entity type. Every write runs
// in a single transaction; any failure path rolls it back so callers never
// observe a partially applied mutation.
type Service[E any, O any] struct {
	db     *gorm.DB
	cfg    Config[E, O]
	logger *slog.Logger
}

func NewService[E any, O any](db *gorm.DB, cfg Config[E, O]) (*Service[E, O], error) {
	if db == nil {
		return nil, errors.New("crud: db is required")
	}
	if cfg.ToOutput == nil {
		return nil, errors.New("crud: ToOutput is required")
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logger.L()
	}
	return &Service[E, O]{db: db, cfg: cfg, logger: lg}, nil
}

// Page is the list response container. Results is always present; Count,
// Next and Previous are populated only when a pagination strategy is
// configured, and absent links serialize as null.
type Page[O any] struct {
	Count    *int64  `json:"count,omitempty"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []O     `json:"results"`
}

func (s *Service[E, O]) List(ctx context.Context, in Input) (*Page[O], *internal.AppError) {
	if denied := s.checkPermissions(ctx, OpList, in); denied != nil {
		return nil, denied
	}

	page := &Page[O]{Results: []O{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(new(E))
		if s.cfg.BaseQuery != nil {
			q = s.cfg.BaseQuery(q)
		}
		for _, f := range s.cfg.Filters {
			q = f.Apply(q, in.Params)
		}

		var rows []E
		if p := s.cfg.Pagination; p != nil {
			var count int64
			if err := q.Count(&count).Error; err != nil {
				return err
			}
			limit, offset := p.Window(in.Params)
			if err := q.Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
				return err
			}
			page.Count = &count
			page.Next, page.Previous = p.Links(in.Params, in.Path, count)
		} else {
			if err := q.Find(&rows).Error; err != nil {
				return err
			}
		}

		for i := range rows {
			page.Results = append(page.Results, s.cfg.ToOutput(&rows[i]))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("list failed", "error", err)
		return nil, internal.AsAppError(err)
	}
	return page, nil
}

func (s *Service[E, O]) Retrieve(ctx context.Context, in Input) (O, *internal.AppError) {
	var zero O
	if denied := s.checkPermissions(ctx, OpRetrieve, in); denied != nil {
		return zero, denied
	}

	entity, appErr := s.fetch(s.db.WithContext(ctx), in.ID)
	if appErr != nil {
		return zero, appErr
	}
	if denied := s.checkEntityPermissions(ctx, OpRetrieve, in, entity); denied != nil {
		return zero, denied
	}
	return s.cfg.ToOutput(entity), nil
}

func (s *Service[E, O]) Create(ctx context.Context, in Input) (O, *internal.AppError) {
	var zero O
	if denied := s.checkPermissions(ctx, OpCreate, in); denied != nil {
		return zero, denied
	}
	if s.cfg.Validate != nil {
		if vErr := s.cfg.Validate(in.Data, validation.GroupCreate); vErr != nil {
			return zero, vErr
		}
	}
	if s.cfg.NewEntity == nil {
		return zero, internal.NewInternal("create is not configured for this resource", nil)
	}

	var out O
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, err := s.cfg.NewEntity(in.Data)
		if err != nil {
			return err
		}
		if h := s.cfg.BeforeCreate; h != nil {
			if err := h(ctx, tx, entity, in); err != nil {
				return hookFailure(err)
			}
		}
		if err := tx.Create(entity).Error; err != nil {
			return err
		}

		fresh, appErr := s.afterWrite(tx, entity)
		if appErr != nil {
			return appErr
		}
		if h := s.cfg.AfterCreate; h != nil {
			if err := h(ctx, tx, fresh, in); err != nil {
				return hookFailure(err)
			}
		}
		out = s.cfg.ToOutput(fresh)
		return nil
	})
	if err != nil {
		return zero, internal.AsAppError(err)
	}
	return out, nil
}

func (s *Service[E, O]) Update(ctx context.Context, in Input, partial bool) (O, *internal.AppError) {
	var zero O
	if denied := s.checkPermissions(ctx, OpUpdate, in); denied != nil {
		return zero, denied
	}
	if s.cfg.ApplyUpdate == nil {
		return zero, internal.NewInternal("update is not configured for this resource", nil)
	}

	group := validation.GroupUpdate
	if partial {
		group = validation.GroupPartial
	}

	var out O
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, appErr := s.fetch(tx, in.ID)
		if appErr != nil {
			return appErr
		}
		if denied := s.checkEntityPermissions(ctx, OpUpdate, in, entity); denied != nil {
			return denied
		}
		if s.cfg.Validate != nil {
			if vErr := s.cfg.Validate(in.Data, group); vErr != nil {
				return vErr
			}
		}
		if h := s.cfg.BeforeUpdate; h != nil {
			if err := h(ctx, tx, entity, in); err != nil {
				return hookFailure(err)
			}
		}
		if err := s.cfg.ApplyUpdate(entity, in.Data, partial); err != nil {
			return err
		}
		if err := tx.Save(entity).Error; err != nil {
			return err
		}

		fresh, appErr := s.afterWrite(tx, entity)
		if appErr != nil {
			return appErr
		}
		if h := s.cfg.AfterUpdate; h != nil {
			if err := h(ctx, tx, fresh, in); err != nil {
				return hookFailure(err)
			}
		}
		out = s.cfg.ToOutput(fresh)
		return nil
	})
	if err != nil {
		return zero, internal.AsAppError(err)
	}
	return out, nil
}

func (s *Service[E, O]) Destroy(ctx context.Context, in Input) *internal.AppError {
	if denied := s.checkPermissions(ctx, OpDestroy, in); denied != nil {
		return denied
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, appErr := s.fetch(tx, in.ID)
		if appErr != nil {
			return appErr
		}
		if denied := s.checkEntityPermissions(ctx, OpDestroy, in, entity); denied != nil {
			return denied
		}
		if h := s.cfg.BeforeDestroy; h != nil {
			if err := h(ctx, tx, entity, in); err != nil {
				return hookFailure(err)
			}
		}
		if err := tx.Delete(entity).Error; err != nil {
			return err
		}
		if h := s.cfg.AfterDestroy; h != nil {
			if err := h(ctx, tx, entity, in); err != nil {
				return hookFailure(err)
			}
		}
		return nil
	})
	if err != nil {
		return internal.AsAppError(err)
	}
	return nil
}

func (s *Service[E, O]) checkPermissions(ctx context.Context, op Op, in Input) *internal.AppError {
	for _, p := range s.cfg.Permissions[op] {
		if !p.Check(ctx, in) {
			return internal.NewPermissionDenied(p.Message())
		}
	}
	return nil
}

func (s *Service[E, O]) checkEntityPermissions(ctx context.Context, op Op, in Input, entity *E) *internal.AppError {
	for _, p := range s.cfg.EntityPermissions[op] {
		if !p.Check(ctx, in, entity) {
			return internal.NewPermissionDenied(p.Message())
		}
	}
	return nil
}

func (s *Service[E, O]) fetch(tx *gorm.DB, id int64) (*E, *internal.AppError) {
	q := tx.Model(new(E))
	if s.cfg.BaseQuery != nil {
		q = s.cfg.BaseQuery(q)
	}
	var entity E
	if err := q.First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFound()
		}
		return nil, internal.AsAppError(err)
	}
	return &entity, nil
}

// afterWrite re-fetches the full representation of a just-written entity
// unless shallow mode is configured.
func (s *Service[E, O]) afterWrite(tx *gorm.DB, entity *E) (*E, *internal.AppError) {
	if s.cfg.Shallow || s.cfg.IDOf == nil {
		return entity, nil
	}
	return s.fetch(tx, s.cfg.IDOf(entity))
}

// hookFailure keeps AppErrors from hooks intact (a hook may cancel with a
// specific response) and wraps anything else as an events failure.
func hookFailure(err error) error {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return internal.NewInternal("events failed", err)
}
