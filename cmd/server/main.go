package main

import (
	"log"

	redisv9 "github.com/redis/go-redis/v9"

	"account_backend/internal/app/di"
	"account_backend/internal/app/router"
	accountadapters "account_backend/internal/feature/account/adapters"
	accounthandler "account_backend/internal/feature/account/transport/handler"
	accountusecase "account_backend/internal/feature/account/usecase"
	platformdb "account_backend/internal/platform/db"
	platformredis "account_backend/internal/platform/redis"
	"account_backend/internal/platform/token"
)

func main() {
	// db
	db := platformdb.OpenDB()

	// Redis（検証待ち状態ストア用。落ちていてもDBフォールバックで動かす）
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Falling back to database pending store.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// セッション設定
	tokenCfg := token.LoadConfig()
	// JWT_SECRETチェック（開発中の注意喚起）
	if tokenCfg.Secret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}
	issuer := token.NewIssuer(tokenCfg)

	// Repository
	userRepo := accountadapters.NewUserGorm(db)
	roleRepo := accountadapters.NewRoleGorm(db)
	pendingRepo := di.NewPendingStore(rdb, db, tokenCfg.PendingTTL)

	// Usecase
	accountUC := accountusecase.NewAccountUsecase(userRepo, roleRepo, pendingRepo)

	// Handler
	accountH := accounthandler.NewAccountHandler(accountUC, issuer, tokenCfg.CookieSecure)

	// ルータ生成
	router := router.NewRouter(accountH, issuer)

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
