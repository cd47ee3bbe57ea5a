package domain

import (
	"fmt"
	"strings"
)

// Participant は解決済みのメンション対象者を表します
type Participant struct {
	// ID はSlackユーザーID
	ID string

	// Name は表示用の名前。解決失敗時はIDがそのまま入ります
	Name string

	// DisplayName はプロフィール上の表示名（取得できた場合のみ）
	DisplayName string
}

// FallbackParticipant は情報取得に失敗した場合の代替レコードを返します
// 代替レコードの Name は常に生のIDと一致します
func FallbackParticipant(userID string) Participant {
	return Participant{ID: userID, Name: userID}
}

// Notification は Bubble から依頼された通知送信を表します
type Notification struct {
	// TargetID は宛先ID。先頭文字でルーティングが決まります
	TargetID string

	// Message は送信本文
	Message string

	// ThreadTs はスレッドTS（チャンネル投稿時のみ使用）
	ThreadTs string
}

// IsChannelTarget は宛先がチャンネル（C始まり）またはグループ（G始まり）かを判定します
// それ以外はユーザーIDとみなし、DMを開いてから送信します
func (n Notification) IsChannelTarget() bool {
	return strings.HasPrefix(n.TargetID, "C") || strings.HasPrefix(n.TargetID, "G")
}

// Validate はNotificationの必須項目を検証します
func (n Notification) Validate() error {
	if strings.TrimSpace(n.TargetID) == "" {
		return fmt.Errorf("%w: slackUserIdは必須項目です", ErrInvalid)
	}
	if strings.TrimSpace(n.Message) == "" {
		return fmt.Errorf("%w: messageは必須項目です", ErrInvalid)
	}
	return nil
}
