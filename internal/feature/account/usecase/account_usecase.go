package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"account_backend/internal/feature/account/domain/entity"
)

// defaultMemberRoleID はMemberロールのシード行が見つからない場合のフォールバックです。
const defaultMemberRoleID = 1

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailTakenを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーをロール込みで取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーをロール込みで取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Update は既存ユーザーの変更を永続化します。
	// 対象が存在しない場合、ErrUserNotFoundを返します。
	Update(ctx context.Context, user *entity.User) error
}

// RoleRepository はロールエンティティの参照層を抽象化します。
type RoleRepository interface {
	// FindByName は指定された名前のロールを取得します。
	// ロールが存在しない場合、ErrRoleNotFoundを返します。
	FindByName(ctx context.Context, name string) (*entity.Role, error)
}

// PendingVerificationRepository manages the ephemeral session-to-user mapping
// created at registration and consumed at verification confirmation.
type PendingVerificationRepository interface {
	// Set stores (or overwrites) the pending user for a browser session.
	Set(ctx context.Context, sessionID string, userID uint) error

	// Get returns the pending user ID for a browser session.
	// It returns ErrNoPendingVerification if there is none.
	Get(ctx context.Context, sessionID string) (uint, error)

	// Delete removes the pending state for a browser session.
	// Deleting an absent entry is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// accountUsecase はアカウントフローのビジネスロジックを実装します。
type accountUsecase struct {
	users   UserRepository
	roles   RoleRepository
	pending PendingVerificationRepository
}

// NewAccountUsecase はaccountUsecaseの新しいインスタンスを生成します。
func NewAccountUsecase(users UserRepository, roles RoleRepository, pending PendingVerificationRepository) *accountUsecase {
	return &accountUsecase{
		users:   users,
		roles:   roles,
		pending: pending,
	}
}

// Register は新規ユーザーを未検証状態で登録し、呼び出し元のブラウザセッションに
// 検証待ち状態を紐付けます。バリデーションは先頭の失敗が優先されます。
// バリデーション失敗時には一切の副作用がありません。
func (u *accountUsecase) Register(ctx context.Context, sessionID, name, email, password, confirmPassword string) (*entity.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrAllFieldsRequired
	}
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	// メールアドレスの重複チェック
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Memberロールを解決。シード行が無い場合はID 1にフォールバックする。
	roleID := uint(defaultMemberRoleID)
	if role, roleErr := u.roles.FindByName(ctx, entity.RoleNameMember); roleErr == nil {
		roleID = role.ID
	} else if !errors.Is(roleErr, ErrRoleNotFound) {
		return nil, fmt.Errorf("failed to resolve member role: %w", roleErr)
	}

	now := time.Now().UTC()
	user := &entity.User{
		Name:            name,
		Email:           email,
		Password:        string(hashed),
		RoleID:          roleID,
		IsEmailVerified: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// チェック後に同じメールが挿入された場合、一意制約違反はErrEmailTakenに
		// マッピングされるのでそのまま返す
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := u.pending.Set(ctx, sessionID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to store pending verification: %w", err)
	}
	return user, nil
}

// PendingEmail は呼び出し元セッションの検証待ちユーザーのメールアドレスを返します。
// 表示専用であり、状態は変更しません。
func (u *accountUsecase) PendingEmail(ctx context.Context, sessionID string) (string, error) {
	userID, err := u.pending.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// ConfirmEmail は検証待ちユーザーをメール検証済みに更新し、検証待ち状態を削除します。
// 成功時にはロール込みのユーザーを返すので、呼び出し側はそのままセッションを発行できます。
func (u *accountUsecase) ConfirmEmail(ctx context.Context, sessionID string) (*entity.User, error) {
	userID, err := u.pending.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsEmailVerified = true
	user.UpdatedAt = time.Now().UTC()
	if err := u.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}

	if err := u.pending.Delete(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear pending verification: %w", err)
	}
	return user, nil
}

// Login はユーザーを認証し、成功時にロール込みのユーザーを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *accountUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	// メールアドレスでユーザーを検索
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	// bcrypt.CompareHashAndPasswordが常に呼ばれることを保証する
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // ダミーハッシュ
	if err == nil {
		passwordHash = user.Password
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	// メール未検証のユーザーはログインさせない
	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}
	return user, nil
}
