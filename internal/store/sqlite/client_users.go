package sqlite

import (
	"context"
	"fmt"

	"github.com/wavechat/modstore/internal/store"
)

func (c *sqliteClient) AddUser(ctx context.Context, user *store.User) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	query := `
		INSERT INTO users (user_id, profile_name, age)
		VALUES (:user_id, :profile_name, :age)
	`
	_, err := c.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserExists
		}
		return fmt.Errorf("insert user %s: %w", user.UserID, mapError(err))
	}
	return nil
}

func (c *sqliteClient) UserExists(ctx context.Context, userID string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var count int
	err := c.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users WHERE user_id = ?", userID)
	return count > 0, err
}

func (c *sqliteClient) GetUser(ctx context.Context, userID string) (*store.User, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var user store.User
	err := c.db.GetContext(ctx, &user, `
		SELECT user_id, profile_name, age, banned, suspended, suspension_len, reported_law, risk_score, message_count
		FROM users
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (c *sqliteClient) DeleteUser(ctx context.Context, userID string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	res, err := c.db.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", userID)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *sqliteClient) SetBanned(ctx context.Context, userID string, banned bool) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.updateUser(ctx, userID, "UPDATE users SET banned = ? WHERE user_id = ?", banned, userID)
}

func (c *sqliteClient) SetSuspension(ctx context.Context, userID string, suspended bool, length int64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Lifting a suspension always resets its length.
	if !suspended {
		length = 0
	}
	return c.updateUser(ctx, userID, "UPDATE users SET suspended = ?, suspension_len = ? WHERE user_id = ?", suspended, length, userID)
}

func (c *sqliteClient) SetReportedLaw(ctx context.Context, userID string, banned bool, reported bool) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.updateUser(ctx, userID, "UPDATE users SET banned = ?, reported_law = ? WHERE user_id = ?", banned, reported, userID)
}

func (c *sqliteClient) updateUser(ctx context.Context, userID string, query string, args ...any) error {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user %s: %w", userID, mapError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *sqliteClient) TopRiskUsers(ctx context.Context, limit int) ([]store.User, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var users []store.User
	err := c.db.SelectContext(ctx, &users, `
		SELECT user_id, profile_name, age, banned, suspended, suspension_len, reported_law, risk_score, message_count
		FROM users
		ORDER BY risk_score DESC, message_count DESC
		LIMIT ?
	`, limit)
	return users, err
}

// SetProfileName updates the mutable display name.
func (c *sqliteClient) SetProfileName(ctx context.Context, userID string, name string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.updateUser(ctx, userID, "UPDATE users SET profile_name = ? WHERE user_id = ?", name, userID)
}
