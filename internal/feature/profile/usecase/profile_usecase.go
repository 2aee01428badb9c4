package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"chatbot_backend/internal/feature/profile/domain/entity"
	"chatbot_backend/internal/platform/validation"
)

const (
	maxNameLength = 100
	maxBioLength  = 2000
)

// ProfileRepository はプロフィールの永続化層を抽象化します。
type ProfileRepository interface {
	// FindByUserID はユーザーのプロフィールを返します。存在しない場合はErrProfileNotFoundを返します。
	FindByUserID(ctx context.Context, userID uint) (*entity.Profile, error)
	// Create は新しいプロフィールを保存します。既に存在する場合はErrProfileAlreadyExistsを返します。
	Create(ctx context.Context, p *entity.Profile) error
	// UpdateByUserID は非nilのフィールドだけを更新し、更新後のプロフィールを返します。
	// 存在しない場合はErrProfileNotFoundを返します。
	UpdateByUserID(ctx context.Context, userID uint, f entity.Fields) (*entity.Profile, error)
	// DeleteByUserID はユーザーのプロフィールを削除します。存在しなくてもエラーにしません。
	DeleteByUserID(ctx context.Context, userID uint) error
}

type profileUsecase struct {
	profiles ProfileRepository
}

// NewProfileUsecase はprofileUsecaseの新しいインスタンスを生成します。
func NewProfileUsecase(profiles ProfileRepository) *profileUsecase {
	return &profileUsecase{profiles: profiles}
}

// normalize は入力値をトリムし、メールアドレスを正規化して長さを検証します。
func normalize(f entity.Fields) (entity.Fields, error) {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}

	out := entity.Fields{
		Name:      trim(f.Name),
		Bio:       trim(f.Bio),
		AvatarURL: trim(f.AvatarURL),
	}
	if f.Email != nil {
		email := validation.NormalizeEmail(*f.Email)
		if email != "" && !validation.IsEmail(email) {
			return entity.Fields{}, validation.NewError("email", "email must be a valid email address")
		}
		out.Email = &email
	}
	if out.Name != nil && utf8.RuneCountInString(*out.Name) > maxNameLength {
		return entity.Fields{}, validation.NewError("name", fmt.Sprintf("name must be at most %d characters long", maxNameLength))
	}
	if out.Bio != nil && utf8.RuneCountInString(*out.Bio) > maxBioLength {
		return entity.Fields{}, validation.NewError("bio", fmt.Sprintf("bio must be at most %d characters long", maxBioLength))
	}
	return out, nil
}

// Get はユーザーのプロフィールを返します。存在しない場合は(nil, nil)です。
func (u *profileUsecase) Get(ctx context.Context, userID uint) (*entity.Profile, error) {
	p, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// Create はユーザーのプロフィールを作成します。
// 一人一件の制約はストレージのユニーク制約でも保証されます。
func (u *profileUsecase) Create(ctx context.Context, userID uint, fields entity.Fields) (*entity.Profile, error) {
	f, err := normalize(fields)
	if err != nil {
		return nil, err
	}
	p := &entity.Profile{UserID: userID}
	p.Apply(f)
	if err := u.profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update は指定されたフィールドだけを更新します。
// 並行する削除や別フィールドの更新を上書きしません。
func (u *profileUsecase) Update(ctx context.Context, userID uint, fields entity.Fields) (*entity.Profile, error) {
	f, err := normalize(fields)
	if err != nil {
		return nil, err
	}
	return u.profiles.UpdateByUserID(ctx, userID, f)
}

// Delete はユーザーのプロフィールを削除します。何度呼んでも成功します。
func (u *profileUsecase) Delete(ctx context.Context, userID uint) error {
	return u.profiles.DeleteByUserID(ctx, userID)
}
