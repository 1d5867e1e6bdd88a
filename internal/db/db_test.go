package db

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"noticeboard/internal/models"
)

func TestIsPostgresDSN(t *testing.T) {
	cases := []struct {
		dsn  string
		want bool
	}{
		{"postgres://user:pw@localhost/app", true},
		{"postgresql://user:pw@localhost/app", true},
		{"host=localhost user=app dbname=app", true},
		{"  POSTGRES://x ", true},
		{"file:app.db", false},
		{"app.db", false},
		{":memory:", false},
	}
	for _, tc := range cases {
		if got := IsPostgresDSN(tc.dsn); got != tc.want {
			t.Errorf("IsPostgresDSN(%q) = %v, want %v", tc.dsn, got, tc.want)
		}
	}
}

func TestMigrate(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file:TestMigrate?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Running it again must be a no-op.
	if err := Migrate(gdb); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file:TestEnsureAdmin?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := EnsureAdmin(gdb, "admin123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	var admin models.User
	if err := gdb.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if !admin.IsAdmin {
		t.Fatalf("seeded account must be admin")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")) != nil {
		t.Fatalf("seeded password must verify")
	}

	// Idempotent: a second call must not replace the account.
	if err := gdb.Model(&admin).Update("password_hash", "changed").Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := EnsureAdmin(gdb, "admin123"); err != nil {
		t.Fatalf("second ensure admin: %v", err)
	}
	var count int64
	gdb.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count != 1 {
		t.Fatalf("expected one admin row, got %d", count)
	}
	var again models.User
	gdb.Where("username = ?", "admin").First(&again)
	if again.PasswordHash != "changed" {
		t.Fatalf("existing admin must not be overwritten")
	}
}
