package router

import (
	"github.com/gin-gonic/gin"

	"account_backend/internal/app/view"
	accounthandler "account_backend/internal/feature/account/transport/handler"
	platformhandler "account_backend/internal/platform/http/handler"
	"account_backend/internal/platform/token"
)

func NewRouter(account *accounthandler.AccountHandler, issuer *token.Issuer) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(view.Templates())

	// セッションクッキーがあればクレームをコンテキストに載せる（必須ではない）
	r.Use(token.Identify(issuer))

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	// アプリケーションホーム
	r.GET("/", account.Home)

	// アカウントフロー
	a := r.Group("/account")
	{
		a.GET("/login", account.LoginForm)
		a.POST("/login", account.Login)
		a.GET("/register", account.RegisterForm)
		a.POST("/register", account.Register)
		a.GET("/verify-email", account.VerifyEmail)
		a.POST("/verify-email", account.VerifyEmailConfirm)
		// ログアウトはGET/POSTどちらでも受け付ける
		a.GET("/logout", account.Logout)
		a.POST("/logout", account.Logout)
	}

	return r
}
