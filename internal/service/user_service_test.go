package service

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAuditedUserChangesRedactsPassword(t *testing.T) {
	req := UpdateUserRequest{
		Name:     "Jo",
		Password: "hunter2-plaintext",
	}

	changes := auditedUserChanges(req)

	if changes["name"] != "Jo" {
		t.Errorf("name = %q, want %q", changes["name"], "Jo")
	}
	if changes["password_changed"] != "true" {
		t.Errorf("password_changed = %q, want %q", changes["password_changed"], "true")
	}

	payload, err := json.Marshal(changes)
	if err != nil {
		t.Fatalf("marshal changes: %v", err)
	}
	if strings.Contains(string(payload), "hunter2") {
		t.Errorf("audit payload %s contains the plaintext password", payload)
	}
}

func TestAuditedUserChangesSkipsEmptyFields(t *testing.T) {
	changes := auditedUserChanges(UpdateUserRequest{Role: "admin"})

	if len(changes) != 1 {
		t.Fatalf("changes = %v, want only the role entry", changes)
	}
	if changes["role"] != "admin" {
		t.Errorf("role = %q, want %q", changes["role"], "admin")
	}
	if _, ok := changes["password_changed"]; ok {
		t.Error("password_changed set without a password in the request")
	}
}
