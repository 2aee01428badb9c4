package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"chatbot_backend/internal/feature/auth/domain/entity"
	"chatbot_backend/internal/platform/validation"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// maxPasswordBytes はbcryptが扱える最大バイト数です。
	maxPasswordBytes = 72
	// DefaultResetTokenTTL はリセットトークンの有効期間です。
	DefaultResetTokenTTL = 30 * time.Minute
)

// dummyPasswordHash はユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュです。
// bcrypt.CompareHashAndPasswordが常に呼ばれることを保証します。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は正規化済みメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Save は変更されたユーザーのフィールド（パスワードハッシュ、リセット情報）を永続化します。
	Save(ctx context.Context, user *entity.User) error

	// CompletePasswordReset はリセットトークンのハッシュが一致する場合に限り、
	// パスワードを更新してリセット情報を消去します。一致しない場合はErrResetTokenConsumedを返します。
	CompletePasswordReset(ctx context.Context, userID uint, tokenHash, passwordHash string) error
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type JWTGenerator interface {
	// GenerateToken は指定されたユーザーの署名済みJWTトークンを生成します。
	GenerateToken(userID uint, email string) (string, error)
}

// AuthResult は認証成功時にハンドラーへ返す結果です。
type AuthResult struct {
	User  *entity.User
	Token string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users        UserRepository
	jwtGenerator JWTGenerator
	resetTTL     time.Duration
	hashCost     int
	now          func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
// resetTTLが0以下の場合はDefaultResetTokenTTLを使用します。
func NewAuthUsecase(users UserRepository, jwtGenerator JWTGenerator, resetTTL time.Duration) *authUsecase {
	if resetTTL <= 0 {
		resetTTL = DefaultResetTokenTTL
	}
	return &authUsecase{
		users:        users,
		jwtGenerator: jwtGenerator,
		resetTTL:     resetTTL,
		hashCost:     bcrypt.DefaultCost,
		now:          time.Now,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if password == "" {
		return validation.Required("password")
	}
	if len(password) < minPasswordLength {
		return validation.NewError("password", fmt.Sprintf("password must be at least %d characters long", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return validation.NewError("password", fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes))
	}
	return nil
}

// validateEmail は正規化済みメールアドレスを検証します。
func validateEmail(email string) error {
	if email == "" {
		return validation.Required("email")
	}
	if !validation.IsEmail(email) {
		return validation.NewError("email", "email must be a valid email address")
	}
	return nil
}

func (u *authUsecase) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (u *authUsecase) issue(user *entity.User) (*AuthResult, error) {
	token, err := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録し、トークンを発行します。
// メールアドレスの重複はストレージのユニーク制約で検出され、ErrEmailAlreadyExistsになります。
func (u *authUsecase) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	normalized := validation.NormalizeEmail(email)

	if name == "" {
		return nil, validation.Required("name")
	}
	if err := validateEmail(normalized); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := u.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{Name: name, Email: normalized, PasswordHash: hashed}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return u.issue(user)
}

// Login はユーザーを認証し、成功時にJWTトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	normalized := validation.NormalizeEmail(email)
	if normalized == "" {
		return nil, validation.Required("email")
	}
	if password == "" {
		return nil, validation.Required("password")
	}

	// メールアドレスでユーザーを検索
	user, err := u.users.FindByEmail(ctx, normalized)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.PasswordHash
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、同一のエラーを返す
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issue(user)
}

// UserExists はトークンのsubjectが実在するユーザーを指しているかを返します。
func (u *authUsecase) UserExists(ctx context.Context, userID uint) (bool, error) {
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
