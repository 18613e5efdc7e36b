package session

import (
	"context"
	"testing"
)

func TestAnonymousCannotMutate(t *testing.T) {
	s := Anonymous()
	if s.Authenticated() || s.CanMutate() {
		t.Error("anonymous session should not be authenticated")
	}
}

func TestTokenWithoutIdentityCannotMutate(t *testing.T) {
	s := Session{Token: "abc"}
	if !s.Authenticated() {
		t.Error("session with token should be authenticated")
	}
	if s.CanMutate() {
		t.Error("session without a resolved identity should not mutate")
	}
}

func TestContextRoundTrip(t *testing.T) {
	id := Identity{ID: 3, Username: "root", Role: RoleAdmin}
	got, ok := FromContext(WithIdentity(context.Background(), id))
	if !ok || got != id {
		t.Errorf("FromContext = %+v, %v", got, ok)
	}
	if !got.IsAdmin() {
		t.Error("admin role not detected")
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context returned an identity")
	}
}
