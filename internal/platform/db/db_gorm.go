package db

import (
	"fmt"
	"log"
	"os"
	"time"

	gmysql "gorm.io/driver/mysql"
	gpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"account_backend/internal/feature/account/adapters"
	"account_backend/internal/feature/account/domain/entity"
)

func OpenDB() *gorm.DB {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	instance := os.Getenv("INSTANCE_CONNECTION_NAME")

	var dialector gorm.Dialector
	switch os.Getenv("DB_DRIVER") {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			host, port, user, pass, name)
		dialector = gpostgres.Open(dsn)
	default:
		// デフォルトはMySQL。Cloud SQLのunixソケット接続にも対応する。
		var dsn string
		if instance != "" {
			dsn = fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
				user, pass, instance, name)
		} else {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
				user, pass, host, port, name)
		}
		dialector = gmysql.Open(dsn)
	}

	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		// マイグレーション（Role, User, 検証待ちフォールバックテーブル）
		if err := db.AutoMigrate(
			&entity.Role{},
			&entity.User{},
			&adapters.PendingVerificationModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}

		if err := SeedRoles(db); err != nil {
			log.Fatalf("failed to seed roles: %v", err)
		}
	}

	return db
}

// SeedRoles inserts the fixed role rows (Member=1, Admin=2) if they are not
// present. It is idempotent and never mutates existing rows.
func SeedRoles(db *gorm.DB) error {
	roles := []entity.Role{
		{ID: 1, RoleName: entity.RoleNameMember, Description: "Regular user access"},
		{ID: 2, RoleName: entity.RoleNameAdmin, Description: "Full administrative access"},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error
}
