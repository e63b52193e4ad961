package sqlite

import (
	"context"
	"testing"

	"github.com/wavechat/modstore/internal/store"
)

func newTestClient(t *testing.T) *sqliteClient {
	t.Helper()

	client, err := NewSQLiteClient(context.Background(), t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func mustAddUser(t *testing.T, client *sqliteClient, userID string, age int64) {
	t.Helper()

	err := client.AddUser(context.Background(), &store.User{
		UserID:      userID,
		ProfileName: "user-" + userID,
		Age:         store.AgeOf(age),
	})
	if err != nil {
		t.Fatalf("add user %s: %v", userID, err)
	}
}
