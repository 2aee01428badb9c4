// Package entity defines the domain entities for the chat feature.
package entity

import "time"

// ChatMessage は一往復の質問と回答です。作成後に変更されることはありません。
// UserIDがnilのエントリは匿名チャットで保存されたものです。
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    *uint     `gorm:"index"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}
