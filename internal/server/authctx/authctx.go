package authctx

import (
	"context"

	"rms-backend/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

type CurrentUser struct {
	ID       int64
	Email    string
	Role     domain.UserRole
	BranchID *int64
}

// BranchScope returns the branch a user's reads must be restricted to.
// Admins see every branch; everyone else is pinned to their own.
func (u CurrentUser) BranchScope() *int64 {
	if u.Role == domain.RoleAdmin {
		return nil
	}
	return u.BranchID
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
