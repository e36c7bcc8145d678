package service

import (
	"context"
	"errors"

	"yatube/internal/models"
)

var (
	ErrForbidden          = errors.New("доступ запрещен")
	ErrUnauthorized       = errors.New("требуется авторизация")
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
)

// Decision is the outcome of an ownership check.
type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) Err() error {
	if d == Allowed {
		return nil
	}
	return ErrForbidden
}

// Owned is anything that belongs to a single user.
type Owned interface {
	OwnerID() int64
}

// AssertOwner is the one ownership check every mutating operation goes through.
func AssertOwner(actor *models.User, resource Owned) Decision {
	if actor == nil || resource == nil {
		return Denied
	}
	if actor.UserID != 0 && actor.UserID == resource.OwnerID() {
		return Allowed
	}
	return Denied
}

type ctxKey struct{}

func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// CurrentUser returns the authenticated user of the request, or nil.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(ctxKey{}).(*models.User)
	return user
}
