package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/wavechat/modstore/internal/store"
)

// messageCountRamp dampens the risk score of users with little history: a
// classifier verdict over a handful of messages is weaker evidence than the
// same verdict sustained over many.
const messageCountRamp = 5

func (c *sqliteClient) LogConversation(ctx context.Context, conv *store.Conversation, mlRiskScore float64) (*store.User, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if conv.Timestamp.IsZero() {
		conv.Timestamp = time.Now().UTC()
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO conversations (message_id, user_id, conversation_id, confidence_score, grooming_suspected, timestamp)
		VALUES (:message_id, :user_id, :conversation_id, :confidence_score, :grooming_suspected, :timestamp)
	`, conv)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("message %s already logged: %w", conv.MessageID, store.ErrConstraint)
		}
		return nil, fmt.Errorf("insert conversation %s: %w", conv.MessageID, mapError(err))
	}

	var user store.User
	if err = tx.GetContext(ctx, &user, `
		SELECT user_id, profile_name, age, banned, suspended, suspension_len, reported_law, risk_score, message_count
		FROM users
		WHERE user_id = ?
	`, conv.UserID); err != nil {
		return nil, mapError(err)
	}

	user.MessageCount++
	user.RiskScore = rampRiskScore(mlRiskScore, user.MessageCount)

	if _, err = tx.ExecContext(ctx,
		"UPDATE users SET risk_score = ?, message_count = ? WHERE user_id = ?",
		user.RiskScore, user.MessageCount, user.UserID,
	); err != nil {
		return nil, fmt.Errorf("update risk score for %s: %w", user.UserID, mapError(err))
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &user, nil
}

// rampRiskScore scales the classifier's per-user risk score by message
// history and clamps it to the schema's [0,100] range.
func rampRiskScore(mlRiskScore float64, messageCount int64) float64 {
	score := mlRiskScore
	if messageCount < messageCountRamp {
		score = mlRiskScore * float64(messageCount) / messageCountRamp
	}
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

func (c *sqliteClient) GetConversations(ctx context.Context, userID string) ([]store.Conversation, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var conversations []store.Conversation
	err := c.db.SelectContext(ctx, &conversations, `
		SELECT message_id, user_id, conversation_id, confidence_score, grooming_suspected, timestamp
		FROM conversations
		WHERE user_id = ?
		ORDER BY timestamp
	`, userID)
	return conversations, err
}

func (c *sqliteClient) GetUserStats(ctx context.Context, userID string) (*store.UserStats, error) {
	user, err := c.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	conversations, err := c.GetConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &store.UserStats{User: *user, Conversations: conversations}, nil
}
