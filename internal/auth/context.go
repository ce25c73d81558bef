package auth

import (
	"context"
	"strings"

	"github.com/fekuna/blueice-inventory-service/internal/apperror"
	"google.golang.org/grpc/metadata"
)

type UserContext struct {
	UserID string
	Role   string
}

type ctxKey struct{}

// WithUser stores the caller identity resolved by the session gateway.
func WithUser(ctx context.Context, u UserContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// GetUser returns the caller identity from the context, falling back to
// incoming gRPC metadata.
func GetUser(ctx context.Context) (UserContext, bool) {
	if u, ok := ctx.Value(ctxKey{}).(UserContext); ok {
		return u, true
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return UserContext{}, false
	}
	u := UserContext{}
	if val := md.Get("x-user-id"); len(val) > 0 {
		u.UserID = val[0]
	}
	if val := md.Get("x-user-role"); len(val) > 0 {
		u.Role = val[0]
	}
	return u, u.UserID != "" || u.Role != ""
}

// GetUserID returns the caller id or "" for anonymous/system calls.
func GetUserID(ctx context.Context) string {
	u, _ := GetUser(ctx)
	return u.UserID
}

func GetUserRole(ctx context.Context) string {
	u, _ := GetUser(ctx)
	return u.Role
}

// Authorizer is consulted before privileged operations run.
type Authorizer interface {
	Authorize(ctx context.Context, action string) error
}

// RoleAuthorizer admits callers whose role is one of AdminRoles.
type RoleAuthorizer struct {
	AdminRoles []string
}

func NewRoleAuthorizer(adminRoles []string) *RoleAuthorizer {
	return &RoleAuthorizer{AdminRoles: adminRoles}
}

func (a *RoleAuthorizer) Authorize(ctx context.Context, action string) error {
	u, ok := GetUser(ctx)
	if !ok || strings.TrimSpace(u.Role) == "" {
		return apperror.Forbidden(action)
	}
	for _, role := range a.AdminRoles {
		role = strings.TrimSpace(role)
		if role != "" && strings.EqualFold(role, strings.TrimSpace(u.Role)) {
			return nil
		}
	}
	return apperror.Forbidden(action)
}
