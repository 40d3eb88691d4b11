package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
)

// IDGenerator hands out unique recipe identifiers.
type IDGenerator interface {
	Next() int64
}

// IdentityLookup resolves facts about the calling principal.
type IdentityLookup interface {
	// CurrentUserID returns the principal's user id, false when anonymous.
	CurrentUserID(p authz.Principal) (uuid.UUID, bool)
	// IsAdmin reports whether the principal holds the administrator role.
	IsAdmin(ctx context.Context, p authz.Principal) (bool, error)
}
