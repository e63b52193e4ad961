package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/wavechat/modstore/internal/store"
)

func TestAddUserDuplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	mustAddUser(t, client, "u1", 47)

	err := client.AddUser(ctx, &store.User{UserID: "u1", ProfileName: "someone else"})
	if !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("got error %v, want ErrUserExists", err)
	}

	user, err := client.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.ProfileName != "user-u1" {
		t.Errorf("profile_name = %q, original row should be untouched", user.ProfileName)
	}
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	_, err := client.GetUser(context.Background(), "nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
}

func TestUserExists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	mustAddUser(t, client, "u1", 21)

	exists, err := client.UserExists(ctx, "u1")
	if err != nil {
		t.Fatalf("user exists: %v", err)
	}
	if !exists {
		t.Error("u1 should exist")
	}

	exists, err = client.UserExists(ctx, "u2")
	if err != nil {
		t.Fatalf("user exists: %v", err)
	}
	if exists {
		t.Error("u2 should not exist")
	}
}

func TestSetProfileName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	mustAddUser(t, client, "u1", 21)

	if err := client.SetProfileName(ctx, "u1", "renamed"); err != nil {
		t.Fatalf("set profile name: %v", err)
	}
	user, err := client.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.ProfileName != "renamed" {
		t.Errorf("profile_name = %q, want %q", user.ProfileName, "renamed")
	}

	if err := client.SetProfileName(ctx, "nobody", "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("renaming unknown user: got %v, want ErrNotFound", err)
	}
}

func TestModerationFlagUpdates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	mustAddUser(t, client, "u1", 33)

	if err := client.SetBanned(ctx, "u1", true); err != nil {
		t.Fatalf("set banned: %v", err)
	}
	if err := client.SetSuspension(ctx, "u1", true, 7); err != nil {
		t.Fatalf("set suspension: %v", err)
	}

	user, err := client.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !user.Banned || !user.Suspended || user.SuspensionLen != 7 {
		t.Fatalf("got %+v, want banned, suspended for 7", user)
	}

	// Lifting the suspension resets its length even when the caller passes one.
	if err := client.SetSuspension(ctx, "u1", false, 3); err != nil {
		t.Fatalf("lift suspension: %v", err)
	}
	user, err = client.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Suspended || user.SuspensionLen != 0 {
		t.Fatalf("got suspended=%v len=%d, want lifted with zero length", user.Suspended, user.SuspensionLen)
	}
}

func TestSetReportedLaw(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	mustAddUser(t, client, "u1", 33)

	if err := client.SetReportedLaw(ctx, "u1", true, true); err != nil {
		t.Fatalf("set reported law: %v", err)
	}
	user, err := client.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !user.Banned || !user.ReportedLaw {
		t.Fatalf("got banned=%v reported=%v, want both true", user.Banned, user.ReportedLaw)
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	for name, err := range map[string]error{
		"set banned":       client.SetBanned(ctx, "nobody", true),
		"set suspension":   client.SetSuspension(ctx, "nobody", true, 1),
		"set reported":     client.SetReportedLaw(ctx, "nobody", true, true),
		"set profile name": client.SetProfileName(ctx, "nobody", "ghost"),
		"delete":           client.DeleteUser(ctx, "nobody"),
	} {
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s: got error %v, want ErrNotFound", name, err)
		}
	}
}

func TestTopRiskUsersOrdering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)
	for _, u := range []struct {
		id   string
		risk float64
	}{
		{"low", 10},
		{"high", 90},
		{"mid", 55},
	} {
		mustAddUser(t, client, u.id, 20)
		if _, err := client.db.ExecContext(ctx, "UPDATE users SET risk_score = ? WHERE user_id = ?", u.risk, u.id); err != nil {
			t.Fatalf("seed risk score: %v", err)
		}
	}

	users, err := client.TopRiskUsers(ctx, 2)
	if err != nil {
		t.Fatalf("top risk users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if users[0].UserID != "high" || users[1].UserID != "mid" {
		t.Fatalf("got order %s, %s; want high, mid", users[0].UserID, users[1].UserID)
	}
}
