package auth

import (
	"context"
	"testing"

	"github.com/docchat/docchat/internal/model"
)

func TestContextWithAuth_RoundTrip(t *testing.T) {
	t.Parallel()

	authCtx := &model.AuthContext{
		UserID:        "01J0000000000000000000TEST",
		Email:         "user@example.com",
		EmailVerified: true,
	}

	ctx := ContextWithAuth(context.Background(), authCtx)

	got := AuthFromContext(ctx)
	if got == nil {
		t.Fatal("AuthFromContext returned nil")
	}
	if got.UserID != authCtx.UserID {
		t.Errorf("UserID = %s, want %s", got.UserID, authCtx.UserID)
	}
	if got.Email != authCtx.Email {
		t.Errorf("Email = %s, want %s", got.Email, authCtx.Email)
	}
}

func TestAuthFromContext_Missing(t *testing.T) {
	t.Parallel()

	if got := AuthFromContext(context.Background()); got != nil {
		t.Errorf("AuthFromContext on empty context = %v, want nil", got)
	}
}

func TestMustAuthFromContext_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustAuthFromContext should panic without auth context")
		}
	}()

	MustAuthFromContext(context.Background())
}

func TestUserIDFromContext(t *testing.T) {
	t.Parallel()

	if got := UserIDFromContext(context.Background()); got != "" {
		t.Errorf("UserIDFromContext on empty context = %q, want empty", got)
	}

	ctx := ContextWithAuth(context.Background(), &model.AuthContext{UserID: "user-1"})
	if got := UserIDFromContext(ctx); got != "user-1" {
		t.Errorf("UserIDFromContext = %q, want user-1", got)
	}
}
