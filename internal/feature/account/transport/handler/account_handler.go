// Package handler はaccountフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"account_backend/internal/app/view"
	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/transport/http/dto"
	"account_backend/internal/feature/account/usecase"
	"account_backend/internal/platform/session"
	"account_backend/internal/platform/token"
)

// AccountUsecase はアカウントフローの操作を定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AccountUsecase interface {
	// Register は新規ユーザーを未検証状態で登録し、検証待ち状態をセッションに紐付けます。
	Register(ctx context.Context, sessionID, name, email, password, confirmPassword string) (*entity.User, error)
	// PendingEmail は検証待ちユーザーのメールアドレスを返します。
	PendingEmail(ctx context.Context, sessionID string) (string, error)
	// ConfirmEmail は検証待ちユーザーを検証済みに更新し、検証待ち状態を削除します。
	ConfirmEmail(ctx context.Context, sessionID string) (*entity.User, error)
	// Login はユーザーを認証し、成功時にロール込みのユーザーを返します。
	Login(ctx context.Context, email, password string) (*entity.User, error)
}

// SessionIssuer は検証済みユーザーを署名付きセッションクレデンシャルに変換します。
type SessionIssuer interface {
	// IssueSession はユーザーのクレームを束ねた署名済みトークンと有効期間を返します。
	IssueSession(user *entity.User, persistent bool) (string, time.Duration, error)
}

// AccountHandler はアカウントフローのHTTPリクエストを処理します。
// フォームのPOSTを受け、成功時はリダイレクト、失敗時はフォームを再表示します。
type AccountHandler struct {
	accounts      AccountUsecase
	sessions      SessionIssuer
	secureCookies bool
}

// NewAccountHandler はAccountHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewAccountHandler(accounts AccountUsecase, sessions SessionIssuer, secureCookies bool) *AccountHandler {
	return &AccountHandler{
		accounts:      accounts,
		sessions:      sessions,
		secureCookies: secureCookies,
	}
}

// LoginForm はログインフォームを表示します。
func (h *AccountHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", view.Form{})
}

// Login はログインフォームのPOSTを処理します。
// - 入力不備・認証失敗時はフォームをエラーメッセージ付きで再表示
// - 成功時はセッションクッキーを発行してホームへリダイレクト
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("login form bind failed", "error", err, "remote_addr", c.ClientIP())
		c.HTML(http.StatusBadRequest, "login.html", view.Form{Error: "email and password required"})
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if msg, ok := usecase.UserFacing(err); ok {
			slog.Warn("login failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			c.HTML(loginFailureStatus(err), "login.html", view.Form{Error: msg})
			return
		}
		h.renderFault(c, "login", err)
		return
	}

	if !h.issueSession(c, user, req.RememberMe) {
		return
	}
	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, "/")
}

// loginFailureStatus はログイン失敗の種別からHTTPステータスを決めます。
// 入力不備は400、認証失敗は401でフォームを再表示します。
func loginFailureStatus(err error) int {
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	return http.StatusUnauthorized
}

// RegisterForm は登録フォームを表示します。
func (h *AccountHandler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", view.Form{})
}

// Register は登録フォームのPOSTを処理します。
// - バリデーション失敗時はフォームをエラーメッセージ付きで再表示（副作用なし）
// - 成功時は検証待ちクッキーをセットして検証ページへリダイレクト
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("register form bind failed", "error", err, "remote_addr", c.ClientIP())
		c.HTML(http.StatusBadRequest, "register.html", view.Form{Error: "all fields required"})
		return
	}

	// 既存の検証待ちセッションがあれば引き継ぎ、無ければ新規発行する
	sid, err := c.Cookie(token.PendingCookieName)
	if err != nil || sid == "" {
		sid, err = session.NewSessionID()
		if err != nil {
			h.renderFault(c, "register", err)
			return
		}
	}

	user, err := h.accounts.Register(c.Request.Context(), sid, req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		if msg, ok := usecase.UserFacing(err); ok {
			slog.Warn("register failed", "error", err, "email", req.Email, "remote_addr", c.ClientIP())
			c.HTML(http.StatusBadRequest, "register.html", view.Form{Error: msg})
			return
		}
		h.renderFault(c, "register", err)
		return
	}

	// 検証待ち状態はブラウザセッション限りなのでMax-Ageは付けない
	c.SetCookie(token.PendingCookieName, sid, 0, "/", "", h.secureCookies, true)
	slog.Info("user registered", "user_id", user.ID, "email", user.Email, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, "/account/verify-email")
}

// VerifyEmail は検証待ちページを表示します。
// 検証待ち状態が無い、または対象ユーザーが消えている場合は登録ページへ戻します。
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	sid, err := c.Cookie(token.PendingCookieName)
	if err != nil || sid == "" {
		c.Redirect(http.StatusFound, "/account/register")
		return
	}

	email, err := h.accounts.PendingEmail(c.Request.Context(), sid)
	if err != nil {
		if errors.Is(err, usecase.ErrNoPendingVerification) || errors.Is(err, usecase.ErrUserNotFound) {
			c.Redirect(http.StatusFound, "/account/register")
			return
		}
		h.renderFault(c, "verify email", err)
		return
	}
	c.HTML(http.StatusOK, "verify_email.html", view.Verify{Email: email})
}

// VerifyEmailConfirm は検証確認のPOSTを処理します。
// 成功時は非永続セッションを発行し、検証待ち状態とクッキーを破棄して
// ホームへリダイレクトします。
func (h *AccountHandler) VerifyEmailConfirm(c *gin.Context) {
	sid, err := c.Cookie(token.PendingCookieName)
	if err != nil || sid == "" {
		c.Redirect(http.StatusSeeOther, "/account/register")
		return
	}

	user, err := h.accounts.ConfirmEmail(c.Request.Context(), sid)
	if err != nil {
		if errors.Is(err, usecase.ErrNoPendingVerification) || errors.Is(err, usecase.ErrUserNotFound) {
			c.Redirect(http.StatusSeeOther, "/account/register")
			return
		}
		h.renderFault(c, "verify email confirm", err)
		return
	}

	if !h.issueSession(c, user, false) {
		return
	}
	// 検証待ちクッキーを破棄
	c.SetCookie(token.PendingCookieName, "", -1, "/", "", h.secureCookies, true)
	slog.Info("email verified", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout はセッションクッキーを無条件に破棄してホームへリダイレクトします。
// セッションが存在しなくても成功します（冪等）。
func (h *AccountHandler) Logout(c *gin.Context) {
	c.SetCookie(token.SessionCookieName, "", -1, "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, "/")
}

// Home はアプリケーションのホームページを表示します。
// 有効なセッションクッキーがあればクレームからサインイン状態を表示します。
func (h *AccountHandler) Home(c *gin.Context) {
	model := view.Home{}
	if claims, ok := token.CurrentClaims(c); ok {
		model.SignedIn = true
		model.Name = claims.Name
		model.Email = claims.Email
		model.Role = claims.Role
	}
	c.HTML(http.StatusOK, "home.html", model)
}

// issueSession はセッションクッキーを発行します。失敗時は500ページを表示して
// falseを返します。
func (h *AccountHandler) issueSession(c *gin.Context, user *entity.User, persistent bool) bool {
	signed, ttl, err := h.sessions.IssueSession(user, persistent)
	if err != nil {
		h.renderFault(c, "issue session", err)
		return false
	}

	// 永続セッションのみMax-Ageを付け、ブラウザ再起動後も残す
	maxAge := 0
	if persistent {
		maxAge = int(ttl.Seconds())
	}
	c.SetCookie(token.SessionCookieName, signed, maxAge, "/", "", h.secureCookies, true)
	return true
}

// renderFault はストレージ等の予期しない障害を汎用の500ページとして表示します。
func (h *AccountHandler) renderFault(c *gin.Context, op string, err error) {
	slog.Error("account operation failed", "op", op, "error", err, "remote_addr", c.ClientIP())
	c.HTML(http.StatusInternalServerError, "error.html", nil)
}
