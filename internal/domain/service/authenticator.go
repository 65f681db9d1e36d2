package service

import (
	"context"

	"network-registry/internal/domain/entity"
)

// Authenticator verifies a bearer credential and resolves the caller behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Principal, error)
}
