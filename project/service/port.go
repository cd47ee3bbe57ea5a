package service

import "context"

// SlackPort は Slack API 呼び出しのポートです
type SlackPort interface {
	// PostMessage はチャンネルにメッセージを投稿します
	// threadTS が空でない場合のみスレッド返信として投稿します
	PostMessage(ctx context.Context, channelID, text, threadTS string) error

	// OpenDM は指定ユーザーとのDMチャンネルを開き、チャンネルIDを返します
	// Slack側が ok=false を返した場合はそのエラー文字列を含むエラーを返します
	OpenDM(ctx context.Context, userID string) (string, error)

	// GetUserInfo はユーザーの表示情報を取得します
	GetUserInfo(ctx context.Context, userID string) (*UserInfo, error)

	// GetTeamID はワークスペースのIDを取得します
	// イベントに team_id が含まれない場合の補完にのみ使用します
	GetTeamID(ctx context.Context) (string, error)
}

// WorkflowPort は Bubble ワークフローへの転送のポートです
type WorkflowPort interface {
	// Forward はメッセージ封筒をワークフローへ転送し、同期返信テキストを返します
	// 返信がない場合（レスポンスが空・不正な形の場合を含む）は空文字列を返します
	// エラーは全認証方式を試行しても転送できなかった場合のみ返します
	Forward(ctx context.Context, env *Envelope) (string, error)

	// ForwardInstall はOAuthインストール完了情報をワークフローへ転送します
	ForwardInstall(ctx context.Context, install *InstallEvent) error
}
