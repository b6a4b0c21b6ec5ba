package auth

import (
	"context"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Fatal("expected no auth context on empty context")
	}
	if got := UserID(ctx); got != 0 {
		t.Errorf("UserID on empty context = %d, want 0", got)
	}

	ctx = WithAuth(ctx, AuthContext{UserID: 42, SessionID: 7})

	ac, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if ac.UserID != 42 || ac.SessionID != 7 {
		t.Errorf("got %+v, want UserID 42 SessionID 7", ac)
	}
	if got := UserID(ctx); got != 42 {
		t.Errorf("UserID = %d, want 42", got)
	}
}
