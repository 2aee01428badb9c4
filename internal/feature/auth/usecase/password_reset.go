package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"chatbot_backend/internal/platform/validation"
)

// resetTokenBytes はリセットトークンの乱数バイト長です（hexで64文字）。
const resetTokenBytes = 32

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset は既存ユーザーにリセットトークンを発行し、生のトークンを返します。
// ストレージにはハッシュのみを保存します。ユーザーが存在しない場合は空文字列とnilを返し、
// 呼び出し側はどちらの場合も同じレスポンスを返します。
func (u *authUsecase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	normalized := validation.NormalizeEmail(email)
	if err := validateEmail(normalized); err != nil {
		return "", err
	}

	user, err := u.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return "", err
	}

	// 再発行時は以前のトークンを上書きする
	user.SetPendingReset(hashResetToken(token), u.now().Add(u.resetTTL))
	if err := u.users.Save(ctx, user); err != nil {
		return "", fmt.Errorf("failed to save reset token: %w", err)
	}

	return token, nil
}

// ConfirmPasswordReset はトークンを検証してパスワードを更新し、新しいセッショントークンを発行します。
// 成功するとトークンは消費され、同じトークンで二度目の更新はできません。
// 失敗時は保留中のリセット情報を変更しません。
func (u *authUsecase) ConfirmPasswordReset(ctx context.Context, email, token, newPassword string) (*AuthResult, error) {
	normalized := validation.NormalizeEmail(email)
	if err := validateEmail(normalized); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, validation.Required("token")
	}
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidOrExpiredReset
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.HasPendingReset(u.now()) {
		return nil, ErrInvalidOrExpiredReset
	}

	tokenHash := hashResetToken(token)
	if subtle.ConstantTimeCompare([]byte(tokenHash), []byte(*user.ResetTokenHash)) != 1 {
		return nil, ErrInvalidOrExpiredReset
	}

	hashed, err := u.hashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	// 並行する確認リクエストのうち、一つだけが成功する
	if err := u.users.CompletePasswordReset(ctx, user.ID, tokenHash, hashed); err != nil {
		if errors.Is(err, ErrResetTokenConsumed) {
			return nil, ErrInvalidOrExpiredReset
		}
		return nil, err
	}

	user.PasswordHash = hashed
	user.ClearPendingReset()
	return u.issue(user)
}
