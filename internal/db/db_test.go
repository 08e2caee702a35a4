package db

import (
	"testing"

	"gorm.io/gorm/logger"
)

func TestTierFeaturesRoundTrip(t *testing.T) {
	var tier Tier
	tier.SetFeatures([]string{" Priority support ", "", "Private Slack"})

	got := tier.Features()
	if len(got) != 2 || got[0] != "Priority support" || got[1] != "Private Slack" {
		t.Fatalf("unexpected features %v", got)
	}
}

func TestTierFeaturesIgnoresCorruptJSON(t *testing.T) {
	tier := Tier{FeaturesJSON: "{not json"}
	if got := tier.Features(); got != nil {
		t.Fatalf("expected nil features, got %v", got)
	}
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	gdb, err := Open("file:db_ensure_user?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := EnsureUser(gdb, "admin", "secret"); err != nil {
		t.Fatalf("EnsureUser returned error: %v", err)
	}
	if err := EnsureUser(gdb, "admin", "other"); err != nil {
		t.Fatalf("second EnsureUser returned error: %v", err)
	}

	var users []User
	gdb.Find(&users)
	if len(users) != 1 {
		t.Fatalf("expected one user, got %d", len(users))
	}
	if !users[0].CheckPassword("secret") {
		t.Fatal("expected original password to be kept")
	}
	if err := CreateUser(gdb, "admin", "x"); err != ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}
