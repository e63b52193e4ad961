package store

import (
	"context"

	apperrors "github.com/wavechat/modstore/internal/errors"
)

// Sentinels are shared with the rest of the module through internal/errors
// so errors.Is checks hold across package boundaries.
var (
	ErrNotFound   = apperrors.ErrNotFound
	ErrUserExists = apperrors.ErrAlreadyExists
	ErrConstraint = apperrors.ErrConstraint
)

type Client interface {
	Close() error

	AddUser(ctx context.Context, user *User) error
	SetProfileName(ctx context.Context, userID string, name string) error
	UserExists(ctx context.Context, userID string) (bool, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	DeleteUser(ctx context.Context, userID string) error

	LogConversation(ctx context.Context, conv *Conversation, mlRiskScore float64) (*User, error)
	GetConversations(ctx context.Context, userID string) ([]Conversation, error)
	GetUserStats(ctx context.Context, userID string) (*UserStats, error)

	SetBanned(ctx context.Context, userID string, banned bool) error
	SetSuspension(ctx context.Context, userID string, suspended bool, length int64) error
	SetReportedLaw(ctx context.Context, userID string, banned bool, reported bool) error

	TopRiskUsers(ctx context.Context, limit int) ([]User, error)
}
