package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account_backend/internal/app/view"
	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
	"account_backend/internal/platform/token"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockAccountUsecase is a mock implementation of the AccountUsecase interface.
type mockAccountUsecase struct {
	RegisterFunc     func(ctx context.Context, sessionID, name, email, password, confirmPassword string) (*entity.User, error)
	PendingEmailFunc func(ctx context.Context, sessionID string) (string, error)
	ConfirmEmailFunc func(ctx context.Context, sessionID string) (*entity.User, error)
	LoginFunc        func(ctx context.Context, email, password string) (*entity.User, error)
}

func (m *mockAccountUsecase) Register(ctx context.Context, sessionID, name, email, password, confirmPassword string) (*entity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, sessionID, name, email, password, confirmPassword)
	}
	return testUser(), nil
}

func (m *mockAccountUsecase) PendingEmail(ctx context.Context, sessionID string) (string, error) {
	if m.PendingEmailFunc != nil {
		return m.PendingEmailFunc(ctx, sessionID)
	}
	return "", usecase.ErrNoPendingVerification
}

func (m *mockAccountUsecase) ConfirmEmail(ctx context.Context, sessionID string) (*entity.User, error) {
	if m.ConfirmEmailFunc != nil {
		return m.ConfirmEmailFunc(ctx, sessionID)
	}
	return nil, usecase.ErrNoPendingVerification
}

func (m *mockAccountUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, usecase.ErrInvalidCredentials
}

// mockSessionIssuer is a mock implementation of the SessionIssuer interface.
// It records the persistence flag of the last issued session.
type mockSessionIssuer struct {
	IssueSessionFunc func(user *entity.User, persistent bool) (string, time.Duration, error)
	lastPersistent   *bool
}

func (m *mockSessionIssuer) IssueSession(user *entity.User, persistent bool) (string, time.Duration, error) {
	m.lastPersistent = &persistent
	if m.IssueSessionFunc != nil {
		return m.IssueSessionFunc(user, persistent)
	}
	if persistent {
		return "signed-token", 14 * 24 * time.Hour, nil
	}
	return "signed-token", 2 * time.Hour, nil
}

func testUser() *entity.User {
	return &entity.User{
		ID:              1,
		Name:            "Alice",
		Email:           "a@x.com",
		RoleID:          1,
		Role:            entity.Role{ID: 1, RoleName: entity.RoleNameMember},
		IsEmailVerified: true,
	}
}

// setupRouter wires the handler into a router the way app/router does.
// claims, when non-nil, simulate an authenticated session for Home.
func setupRouter(h *AccountHandler, claims *token.Claims) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(view.Templates())
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(token.ContextClaims, claims)
		}
		c.Next()
	})
	r.GET("/", h.Home)
	a := r.Group("/account")
	{
		a.GET("/login", h.LoginForm)
		a.POST("/login", h.Login)
		a.GET("/register", h.RegisterForm)
		a.POST("/register", h.Register)
		a.GET("/verify-email", h.VerifyEmail)
		a.POST("/verify-email", h.VerifyEmailConfirm)
		a.GET("/logout", h.Logout)
		a.POST("/logout", h.Logout)
	}
	return r
}

func postForm(r *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAccountHandler_Register(t *testing.T) {
	validForm := url.Values{
		"name":            {"Alice"},
		"email":           {"a@x.com"},
		"password":        {"pw1"},
		"confirmPassword": {"pw1"},
	}

	t.Run("success redirects to verification and sets the pending cookie", func(t *testing.T) {
		var gotSessionID string
		mockUC := &mockAccountUsecase{
			RegisterFunc: func(ctx context.Context, sessionID, name, email, password, confirmPassword string) (*entity.User, error) {
				gotSessionID = sessionID
				u := testUser()
				u.IsEmailVerified = false
				return u, nil
			},
		}
		h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/register", validForm)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/account/verify-email", w.Header().Get("Location"))

		cookie := findCookie(w, token.PendingCookieName)
		require.NotNil(t, cookie, "pending cookie was not set")
		assert.Equal(t, gotSessionID, cookie.Value, "cookie must carry the session ID handed to the usecase")
		assert.NotEmpty(t, cookie.Value)
		assert.Zero(t, cookie.MaxAge, "pending cookie must be session-scoped")
	})

	t.Run("existing pending cookie is reused", func(t *testing.T) {
		var gotSessionID string
		mockUC := &mockAccountUsecase{
			RegisterFunc: func(ctx context.Context, sessionID, name, email, password, confirmPassword string) (*entity.User, error) {
				gotSessionID = sessionID
				return testUser(), nil
			},
		}
		h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/register", validForm, &http.Cookie{Name: token.PendingCookieName, Value: "existing-sid"})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "existing-sid", gotSessionID)
	})

	t.Run("validation errors re-render the form", func(t *testing.T) {
		for _, wantErr := range []error{
			usecase.ErrAllFieldsRequired,
			usecase.ErrPasswordMismatch,
			usecase.ErrEmailTaken,
		} {
			mockUC := &mockAccountUsecase{
				RegisterFunc: func(ctx context.Context, sessionID, name, email, password, confirmPassword string) (*entity.User, error) {
					return nil, wantErr
				},
			}
			h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
			r := setupRouter(h, nil)

			w := postForm(r, "/account/register", validForm)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), wantErr.Error())
			assert.Nil(t, findCookie(w, token.PendingCookieName), "no pending cookie on failure")
		}
	})

	t.Run("storage fault renders the error page", func(t *testing.T) {
		mockUC := &mockAccountUsecase{
			RegisterFunc: func(ctx context.Context, sessionID, name, email, password, confirmPassword string) (*entity.User, error) {
				return nil, errors.New("database error")
			},
		}
		h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/register", validForm)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Something went wrong")
		assert.NotContains(t, w.Body.String(), "database error", "internal errors must not leak")
	})
}

func TestAccountHandler_Login(t *testing.T) {
	validForm := url.Values{"email": {"a@x.com"}, "password": {"pw1"}}

	t.Run("success sets a session cookie and redirects home", func(t *testing.T) {
		mockUC := &mockAccountUsecase{
			LoginFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				return testUser(), nil
			},
		}
		issuer := &mockSessionIssuer{}
		h := NewAccountHandler(mockUC, issuer, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/login", validForm)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		cookie := findCookie(w, token.SessionCookieName)
		require.NotNil(t, cookie, "session cookie was not set")
		assert.Equal(t, "signed-token", cookie.Value)
		assert.Zero(t, cookie.MaxAge, "non-persistent session must be a browser-session cookie")

		require.NotNil(t, issuer.lastPersistent)
		assert.False(t, *issuer.lastPersistent)
	})

	t.Run("rememberMe issues a persistent session", func(t *testing.T) {
		mockUC := &mockAccountUsecase{
			LoginFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				return testUser(), nil
			},
		}
		issuer := &mockSessionIssuer{}
		h := NewAccountHandler(mockUC, issuer, false)
		r := setupRouter(h, nil)

		form := url.Values{"email": {"a@x.com"}, "password": {"pw1"}, "rememberMe": {"true"}}
		w := postForm(r, "/account/login", form)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		require.NotNil(t, issuer.lastPersistent)
		assert.True(t, *issuer.lastPersistent)

		cookie := findCookie(w, token.SessionCookieName)
		require.NotNil(t, cookie)
		assert.Equal(t, int((14 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	})

	t.Run("missing fields re-render with 400", func(t *testing.T) {
		mockUC := &mockAccountUsecase{
			LoginFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				return nil, usecase.ErrCredentialsRequired
			},
		}
		h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/login", url.Values{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "email and password required")
	})

	t.Run("auth failures re-render with 401 and no session cookie", func(t *testing.T) {
		for _, wantErr := range []error{usecase.ErrInvalidCredentials, usecase.ErrEmailNotVerified} {
			mockUC := &mockAccountUsecase{
				LoginFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
					return nil, wantErr
				},
			}
			h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
			r := setupRouter(h, nil)

			w := postForm(r, "/account/login", validForm)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), wantErr.Error())
			assert.Nil(t, findCookie(w, token.SessionCookieName), "no session on auth failure")
		}
	})

	t.Run("storage fault renders the error page", func(t *testing.T) {
		mockUC := &mockAccountUsecase{
			LoginFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				return nil, errors.New("database error")
			},
		}
		h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/login", validForm)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAccountHandler_VerifyEmail(t *testing.T) {
	t.Run("no pending cookie redirects to register", func(t *testing.T) {
		h := NewAccountHandler(&mockAccountUsecase{}, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := get(r, "/account/verify-email")

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/account/register", w.Header().Get("Location"))
	})

	t.Run("stale pending state redirects to register", func(t *testing.T) {
		for _, staleErr := range []error{usecase.ErrNoPendingVerification, usecase.ErrUserNotFound} {
			mockUC := &mockAccountUsecase{
				PendingEmailFunc: func(ctx context.Context, sessionID string) (string, error) {
					return "", staleErr
				},
			}
			h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
			r := setupRouter(h, nil)

			w := get(r, "/account/verify-email", &http.Cookie{Name: token.PendingCookieName, Value: "sid-1"})

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/account/register", w.Header().Get("Location"))
		}
	})

	t.Run("shows the pending user's email", func(t *testing.T) {
		mockUC := &mockAccountUsecase{
			PendingEmailFunc: func(ctx context.Context, sessionID string) (string, error) {
				assert.Equal(t, "sid-1", sessionID)
				return "pending@x.com", nil
			},
		}
		h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := get(r, "/account/verify-email", &http.Cookie{Name: token.PendingCookieName, Value: "sid-1"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "pending@x.com")
	})
}

func TestAccountHandler_VerifyEmailConfirm(t *testing.T) {
	t.Run("no pending cookie redirects to register", func(t *testing.T) {
		h := NewAccountHandler(&mockAccountUsecase{}, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/verify-email", url.Values{})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/account/register", w.Header().Get("Location"))
	})

	t.Run("stale pending state redirects to register", func(t *testing.T) {
		mockUC := &mockAccountUsecase{
			ConfirmEmailFunc: func(ctx context.Context, sessionID string) (*entity.User, error) {
				return nil, usecase.ErrNoPendingVerification
			},
		}
		h := NewAccountHandler(mockUC, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/verify-email", url.Values{}, &http.Cookie{Name: token.PendingCookieName, Value: "sid-1"})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/account/register", w.Header().Get("Location"))
	})

	t.Run("success issues a non-persistent session and clears the pending cookie", func(t *testing.T) {
		mockUC := &mockAccountUsecase{
			ConfirmEmailFunc: func(ctx context.Context, sessionID string) (*entity.User, error) {
				assert.Equal(t, "sid-1", sessionID)
				return testUser(), nil
			},
		}
		issuer := &mockSessionIssuer{}
		h := NewAccountHandler(mockUC, issuer, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/verify-email", url.Values{}, &http.Cookie{Name: token.PendingCookieName, Value: "sid-1"})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		require.NotNil(t, issuer.lastPersistent)
		assert.False(t, *issuer.lastPersistent, "verification sessions are never persistent")

		sessionCookie := findCookie(w, token.SessionCookieName)
		require.NotNil(t, sessionCookie, "session cookie was not set")
		assert.Equal(t, "signed-token", sessionCookie.Value)

		pendingCookie := findCookie(w, token.PendingCookieName)
		require.NotNil(t, pendingCookie, "pending cookie was not cleared")
		assert.Negative(t, pendingCookie.MaxAge, "pending cookie must be expired")
	})
}

func TestAccountHandler_Logout(t *testing.T) {
	t.Run("clears the session cookie and redirects home", func(t *testing.T) {
		h := NewAccountHandler(&mockAccountUsecase{}, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := get(r, "/account/logout", &http.Cookie{Name: token.SessionCookieName, Value: "signed-token"})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		cookie := findCookie(w, token.SessionCookieName)
		require.NotNil(t, cookie)
		assert.Negative(t, cookie.MaxAge, "session cookie must be expired")
	})

	t.Run("idempotent without a session", func(t *testing.T) {
		h := NewAccountHandler(&mockAccountUsecase{}, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := postForm(r, "/account/logout", url.Values{})

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestAccountHandler_Home(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		h := NewAccountHandler(&mockAccountUsecase{}, &mockSessionIssuer{}, false)
		r := setupRouter(h, nil)

		w := get(r, "/")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Login")
	})

	t.Run("signed in", func(t *testing.T) {
		h := NewAccountHandler(&mockAccountUsecase{}, &mockSessionIssuer{}, false)
		claims := &token.Claims{Name: "Alice", Email: "a@x.com", Role: entity.RoleNameMember, EmailVerified: true}
		r := setupRouter(h, claims)

		w := get(r, "/")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Alice")
		assert.Contains(t, w.Body.String(), entity.RoleNameMember)
	})
}
