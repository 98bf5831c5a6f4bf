// Package crud is a generic list/retrieve/create/update/destroy orchestrator
// for gorm entities. A resource wires it up with an explicit Config of
// function references instead of subclassing: permission gates, filters, a
// pagination strategy, validation, mapping functions and write hooks.
package crud

import (
	"context"
	"net/url"
)

// Op names one of the five CRUD operations, used to key per-operation
// permission lists.
type Op string

const (
	OpList     Op = "list"
	OpRetrieve Op = "retrieve"
	OpCreate   Op = "create"
	OpUpdate   Op = "update"
	OpDestroy  Op = "destroy"
)

// Input is the request-scoped material an operation works from: the raw
// query parameters, the request path (used for pagination links), the decoded
// body DTO and the target entity id.
type Input struct {
	Params url.Values
	Path   string
	Data   interface{}
	ID     int64
}

// Permission is a request-level yes/no gate. Gates run in order and the
// first denial wins; its Message becomes the 403 body.
type Permission interface {
	Check(ctx context.Context, in Input) bool
	Message() string
}

// EntityPermission additionally sees the already-fetched target entity.
type EntityPermission[E any] interface {
	Check(ctx context.Context, in Input, entity *E) bool
	Message() string
}

type permissionFunc struct {
	message string
	check   func(ctx context.Context, in Input) bool
}

func (p permissionFunc) Check(ctx context.Context, in Input) bool { return p.check(ctx, in) }
func (p permissionFunc) Message() string                          { return p.message }

// NewPermission wraps a predicate function as a Permission.
func NewPermission(message string, check func(ctx context.Context, in Input) bool) Permission {
	return permissionFunc{message: message, check: check}
}

type entityPermissionFunc[E any] struct {
	message string
	check   func(ctx context.Context, in Input, entity *E) bool
}

func (p entityPermissionFunc[E]) Check(ctx context.Context, in Input, entity *E) bool {
	return p.check(ctx, in, entity)
}
func (p entityPermissionFunc[E]) Message() string { return p.message }

func NewEntityPermission[E any](message string, check func(ctx context.Context, in Input, entity *E) bool) EntityPermission[E] {
	return entityPermissionFunc[E]{message: message, check: check}
}
