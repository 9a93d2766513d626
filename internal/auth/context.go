package auth

import (
	"context"

	"github.com/google/uuid"
)

type customerIDKey struct{}
type emailKey struct{}

func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, customerIDKey{}, claims.CustomerID)
	return context.WithValue(ctx, emailKey{}, claims.Email)
}

func CustomerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(customerIDKey{}).(uuid.UUID)
	return id, ok
}

func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey{}).(string)
	return email, ok
}
