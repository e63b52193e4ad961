package store

import (
	"database/sql"
	"time"
)

type (
	// User is one row of the users table, the per-user moderation state.
	User struct {
		UserID        string        `db:"user_id"`
		ProfileName   string        `db:"profile_name"`
		Age           sql.NullInt64 `db:"age"`
		Banned        bool          `db:"banned"`
		Suspended     bool          `db:"suspended"`
		SuspensionLen int64         `db:"suspension_len"`
		ReportedLaw   bool          `db:"reported_law"`
		RiskScore     float64       `db:"risk_score"`
		MessageCount  int64         `db:"message_count"`
	}

	// Conversation is one scored message record. ConfidenceScore is the
	// classifier's probability in [0,1] that the message is problematic,
	// GroomingSuspected its derived verdict.
	Conversation struct {
		MessageID         string    `db:"message_id"`
		UserID            string    `db:"user_id"`
		ConversationID    string    `db:"conversation_id"`
		ConfidenceScore   float64   `db:"confidence_score"`
		GroomingSuspected bool      `db:"grooming_suspected"`
		Timestamp         time.Time `db:"timestamp"`
	}

	// UserStats bundles a user row with their message records in
	// insertion order.
	UserStats struct {
		User          User
		Conversations []Conversation
	}
)

// AgeOf returns a nullable age for insertion. Zero means unknown and maps
// to NULL, since the schema rejects non-positive ages.
func AgeOf(age int64) sql.NullInt64 {
	if age <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: age, Valid: true}
}
