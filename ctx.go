package session

import (
	"context"

	"github.com/goliatone/go-router"
)

var identityCtxKey = &contextKey{"identity"}
var staffCtxKey = &contextKey{"staff"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithIdentityContext sets the Identity in the given context
func WithIdentityContext(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*Identity)
	return raw, ok
}

// WithStaffContext sets the StaffProfile in the given context
func WithStaffContext(ctx context.Context, profile *StaffProfile) context.Context {
	return context.WithValue(ctx, staffCtxKey, profile)
}

// StaffFromContext finds the staff profile from the context.
func StaffFromContext(ctx context.Context) (*StaffProfile, bool) {
	raw, ok := ctx.Value(staffCtxKey).(*StaffProfile)
	return raw, ok
}

// WithClaimsContext sets the ConsoleClaims in the given context
func WithClaimsContext(ctx context.Context, claims ConsoleClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the ConsoleClaims from the standard context
func GetClaims(ctx context.Context) (ConsoleClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(ConsoleClaims)
	return raw, ok
}

// GetRouterClaims extracts the ConsoleClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (ConsoleClaims, bool) {
	if key == "" {
		key = "console_session"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(ConsoleClaims)
	return claims, ok
}

// HasRoleFromContext checks a role tag directly from the standard context.
func HasRoleFromContext(ctx context.Context, role string) bool {
	if claims, ok := GetClaims(ctx); ok && claims.HasRole(role) {
		return true
	}
	if profile, ok := StaffFromContext(ctx); ok {
		return profile.HasRole(role)
	}
	return false
}
