package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/models"
)

type stubUsers struct {
	users map[string]*models.User
}

func (s *stubUsers) GetUserByID(id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func testUser() *models.User {
	u := &models.User{Email: "alice@example.com", Name: "Alice"}
	u.ID = "0190a4e2-7c1e-7c4a-9e1a-5b2c3d4e5f60"
	return u
}

func setupAuthRouter(tokens *TokenManager, users UserLookup) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(tokens, users))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTokenManager(t *testing.T) {
	tokens := NewTokenManager("test-secret", 7*24*time.Hour)
	user := testUser()

	token, err := tokens.GenerateToken(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := tokens.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != user.ID {
		t.Errorf("expected subject %s, got %s", user.ID, claims.Subject)
	}
	if claims.Email != user.Email {
		t.Errorf("expected email %s, got %s", user.Email, claims.Email)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 7*24*time.Hour {
		t.Errorf("expected 7 day expiry, got %s", got)
	}

	t.Run("wrong_secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Hour)
		if _, err := other.ParseToken(token); err == nil {
			t.Error("expected error for token signed with a different secret")
		}
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenManager("test-secret", time.Hour)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, err := past.GenerateToken(user)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := tokens.ParseToken(old); err == nil {
			t.Error("expected error for expired token")
		}
	})

	t.Run("none_algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   user.ID,
				Issuer:    tokenIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := tokens.ParseToken(s); err == nil {
			t.Error("expected error for unsigned token")
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	user := testUser()
	users := &stubUsers{users: map[string]*models.User{user.ID: user}}

	valid, err := tokens.GenerateToken(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ghost := testUser()
	ghost.ID = "0190a4e2-7c1e-7c4a-9e1a-000000000000"
	deleted, err := tokens.GenerateToken(ghost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid_token", "Bearer " + valid, http.StatusOK},
		{"lowercase_scheme", "bearer " + valid, http.StatusOK},
		{"missing_header", "", http.StatusUnauthorized},
		{"wrong_scheme", "Basic " + valid, http.StatusUnauthorized},
		{"garbage_token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"deleted_user", "Bearer " + deleted, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAuthRequest(setupAuthRouter(tokens, users), tt.header)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusOK {
				if got := parseBody(t, rec)["user_id"]; got != user.ID {
					t.Errorf("expected user_id %s, got %v", user.ID, got)
				}
				return
			}
			if code := errorCode(t, rec); code != "UNAUTHORIZED" {
				t.Errorf("expected error code UNAUTHORIZED, got %q", code)
			}
		})
	}
}
