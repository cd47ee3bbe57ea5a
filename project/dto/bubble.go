package dto

// BubbleMessagePayload は Bubble のワークフローへ転送するメッセージ封筒です
// 構築後は変更せず、そのまま JSON として送信します
type BubbleMessagePayload struct {
	Message        string              `json:"message"`             // Botメンション除去後の本文
	SlackUserID    string              `json:"slack_user_id"`       // 送信者のユーザーID
	SlackUserName  string              `json:"slack_user_name"`     // 送信者の表示名
	ChannelID      string              `json:"channel_id"`          // 発生チャンネルID
	ThreadTs       string              `json:"thread_ts,omitempty"` // スレッドTS（ある場合のみ）
	TeamID         string              `json:"team_id,omitempty"`   // ワークスペースID
	MentionedUsers []BubbleMentionUser `json:"mentioned_users"`     // 本文中のメンション対象（出現順）
}

// BubbleMentionUser は本文中でメンションされたユーザーの表示情報です
type BubbleMentionUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`                   // real_name → name → ID の順で決定
	DisplayName string `json:"display_name,omitempty"` // プロフィールの表示名（取得できた場合）
}

// BubbleWorkflowResponse は Bubble ワークフローの同期レスポンスです
type BubbleWorkflowResponse struct {
	Status   string               `json:"status"` // "success" のとき返信を中継
	Response *BubbleInnerResponse `json:"response,omitempty"`
}

// BubbleInnerResponse は Bubble ワークフローの返信本文をくるむ内側の構造です
type BubbleInnerResponse struct {
	Response string `json:"response"`
}

// BubbleNotifyRequest は Bubble からの通知依頼 (/bubble/notify) のリクエストです
type BubbleNotifyRequest struct {
	SlackUserID string `json:"slackUserId"`         // 宛先。C/G 始まりはチャンネル、それ以外はユーザー
	Message     string `json:"message"`             // 送信本文
	ThreadTs    string `json:"thread_ts,omitempty"` // チャンネル投稿時のみ有効
}

// BubbleInstallPayload は OAuth インストール完了を Bubble へ通知するペイロードです
type BubbleInstallPayload struct {
	TeamID       string `json:"team_id"`
	TeamName     string `json:"team_name"`
	BotUserID    string `json:"bot_user_id"`
	AuthedUserID string `json:"authed_user_id"`
	AccessToken  string `json:"access_token"`
}
