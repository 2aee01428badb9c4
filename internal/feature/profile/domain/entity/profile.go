// Package entity defines the domain entities for the profile feature.
package entity

import "time"

// Profile はユーザーごとに一件だけ存在するプロフィールです。
// Email はユーザーのログイン用アドレスとは独立したコピーです。
type Profile struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"size:100;not null;default:''"`
	Email     string `gorm:"size:255;not null;default:''"`
	Bio       string `gorm:"type:text;not null;default:''"`
	AvatarURL string `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields はプロフィールの部分更新を表します。nilのフィールドは変更しません。
type Fields struct {
	Name      *string
	Email     *string
	Bio       *string
	AvatarURL *string
}

// Apply は非nilのフィールドだけをプロフィールに反映します。
func (p *Profile) Apply(f Fields) {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Email != nil {
		p.Email = *f.Email
	}
	if f.Bio != nil {
		p.Bio = *f.Bio
	}
	if f.AvatarURL != nil {
		p.AvatarURL = *f.AvatarURL
	}
}

// Columns は非nilのフィールドをカラム名をキーとするmapで返します。
// 部分更新でnilのフィールドに触れないために使います。
func (f Fields) Columns() map[string]any {
	cols := map[string]any{}
	if f.Name != nil {
		cols["name"] = *f.Name
	}
	if f.Email != nil {
		cols["email"] = *f.Email
	}
	if f.Bio != nil {
		cols["bio"] = *f.Bio
	}
	if f.AvatarURL != nil {
		cols["avatar_url"] = *f.AvatarURL
	}
	return cols
}
