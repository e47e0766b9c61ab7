// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"annotadmin/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	username := uniqueName("test-create")
	t.Cleanup(func() { cleanUsers(t, db, username) })

	user, err := s.Create(username, username+"@store-test.local", "testpass123", models.RoleAnnotator)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == 0 {
		t.Error("expected a database-assigned ID")
	}
	if user.Username != username {
		t.Errorf("username: got %q, want %q", user.Username, username)
	}
	if user.Role != models.RoleAnnotator {
		t.Errorf("role: got %q, want %q", user.Role, models.RoleAnnotator)
	}
	if user.TOTPEnabled {
		t.Error("expected totp_enabled=false for new user")
	}
	if user.PasswordHash == "" || user.PasswordHash == "testpass123" {
		t.Error("password must be stored hashed")
	}
	if !s.CheckPassword(user, "testpass123") {
		t.Error("CheckPassword rejected the correct password")
	}
	if s.CheckPassword(user, "wrong") {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func TestUserStoreCreateRejectsUnknownRole(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	if _, err := s.Create(uniqueName("bad-role"), "x@store-test.local", "pass", models.Role("editor")); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestUserStoreFindByUsername(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	username := uniqueName("test-find")
	t.Cleanup(func() { cleanUsers(t, db, username) })

	user, err := s.FindByUsername(username)
	if err != nil {
		t.Fatalf("FindByUsername (not found): %v", err)
	}
	if user != nil {
		t.Error("expected nil for non-existent user")
	}

	created, err := s.Create(username, username+"@store-test.local", "pass", models.RoleReviewer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	user, err = s.FindByUsername(username)
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if user == nil || user.ID != created.ID {
		t.Fatalf("FindByUsername: got %+v, want id %d", user, created.ID)
	}

	byID, err := s.FindByID(created.ID)
	if err != nil || byID == nil {
		t.Fatalf("FindByID: %v, %v", byID, err)
	}
	if byID.Username != username {
		t.Errorf("username: got %q, want %q", byID.Username, username)
	}
}

func TestUserStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	username := uniqueName("test-totp")
	t.Cleanup(func() { cleanUsers(t, db, username) })

	user, err := s.Create(username, username+"@store-test.local", "pass", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.SetTOTPSecret(user.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	if err := s.EnableTOTP(user.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}

	got, _ := s.FindByID(user.ID)
	if got.TOTPSecret == nil || *got.TOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Errorf("totp secret not stored: %v", got.TOTPSecret)
	}
	if !got.TOTPEnabled {
		t.Error("expected totp enabled")
	}

	if err := s.ResetTOTP(user.ID); err != nil {
		t.Fatalf("ResetTOTP: %v", err)
	}
	got, _ = s.FindByID(user.ID)
	if got.TOTPSecret != nil || got.TOTPEnabled {
		t.Error("expected totp cleared after reset")
	}
}
