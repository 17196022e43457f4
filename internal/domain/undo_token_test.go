package domain

import (
	"testing"
	"time"
)

func TestUndoAction_IsValid(t *testing.T) {
	valid := []UndoAction{
		UndoActionUpdate,
		UndoActionDelete,
		UndoActionStatusChange,
		UndoActionArchive,
		UndoActionBatch,
	}
	for _, action := range valid {
		if !action.IsValid() {
			t.Errorf("Expected %q to be valid", action)
		}
	}

	if UndoAction("redo").IsValid() {
		t.Error("Expected unknown action to be invalid")
	}
	if UndoAction("").IsValid() {
		t.Error("Expected empty action to be invalid")
	}
}

func TestUndoToken_IsExpired(t *testing.T) {
	token := &UndoToken{
		Token:     "abc",
		UserID:    "user1",
		Action:    UndoActionDelete,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if token.IsExpired() {
		t.Error("Expected token within TTL to not be expired")
	}

	token.ExpiresAt = time.Now().Add(-time.Second)
	if !token.IsExpired() {
		t.Error("Expected token past TTL to be expired")
	}
}
