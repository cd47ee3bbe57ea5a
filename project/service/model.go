package service

import "slack-bubble-relay/project/domain"

// MessageEvent はSlackから受信したメッセージイベントを表します
type MessageEvent struct {
	// TeamID はSlackワークスペースのID（イベントに含まれない場合は空）
	TeamID string

	// ChannelID はメッセージが投稿されたチャンネルのID
	ChannelID string

	// UserID はメッセージ送信者のユーザーID
	UserID string

	// Text はメッセージ本文（メンショントークンを含む生テキスト）
	Text string

	// MessageTS はメッセージのタイムスタンプ
	MessageTS string

	// ThreadTs はスレッドTS（スレッド内の場合のみ）
	ThreadTs string
}

// Envelope は Bubble へ転送するメッセージ封筒です
// 構築後は変更しません
type Envelope struct {
	// Message はBot自身のメンショントークンを除去した本文
	Message string

	// SenderID は送信者のユーザーID
	SenderID string

	// SenderName は送信者の表示名（解決失敗時はID）
	SenderName string

	// ChannelID は発生チャンネルID
	ChannelID string

	// ThreadTs はスレッドTS（ある場合のみ）
	ThreadTs string

	// TeamID はワークスペースID（取得できた場合のみ）
	TeamID string

	// Mentioned は本文中でメンションされた参加者（本文での出現順）
	Mentioned []domain.Participant
}

// UserInfo は Slack の users.info から得られるユーザー表示情報です
type UserInfo struct {
	ID          string
	Name        string // アカウント名
	RealName    string // 実名
	DisplayName string // プロフィールの表示名
}

// InstallEvent はOAuthインストール完了を表します
type InstallEvent struct {
	TeamID       string
	TeamName     string
	BotUserID    string
	AuthedUserID string
	AccessToken  string
}
