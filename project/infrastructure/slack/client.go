package slack

import (
	"context"
	"fmt"

	"slack-bubble-relay/project/service"

	"github.com/slack-go/slack"
)

// Client は service.SlackPort の Slack SDK 実装です
// 単一のBotトークンで動作します（ワークスペースごとのトークン管理は行いません）
type Client struct {
	api *slack.Client
}

// NewClient は Slack クライアントを初期化します
func NewClient(botToken string) *Client {
	return &Client{
		api: slack.New(botToken),
	}
}

// PostMessage はチャンネルにメッセージを投稿します
// threadTS が空でない場合のみスレッド返信として投稿します
func (c *Client) PostMessage(ctx context.Context, channelID, text, threadTS string) error {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	_, _, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return fmt.Errorf("slack: メッセージ投稿失敗 (channel=%s): %w", channelID, err)
	}

	return nil
}

// OpenDM は指定ユーザーとのDMチャンネルを開き、チャンネルIDを返します
func (c *Client) OpenDM(ctx context.Context, userID string) (string, error) {
	// conversations.open でDMチャンネルを開く（既存の場合はそのIDが返る）
	dmCh, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		// Slack側の ok=false はエラー文字列（user_not_found など）として返ってくる
		return "", fmt.Errorf("slack: DMチャンネル作成失敗 (user=%s): %w", userID, err)
	}

	return dmCh.ID, nil
}

// GetUserInfo は users.info でユーザーの表示情報を取得します
func (c *Client) GetUserInfo(ctx context.Context, userID string) (*service.UserInfo, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("slack: ユーザー情報取得失敗 (user=%s): %w", userID, err)
	}

	return &service.UserInfo{
		ID:          user.ID,
		Name:        user.Name,
		RealName:    user.RealName,
		DisplayName: user.Profile.DisplayName,
	}, nil
}

// GetTeamID は team.info でワークスペースのIDを取得します
func (c *Client) GetTeamID(ctx context.Context) (string, error) {
	team, err := c.api.GetTeamInfoContext(ctx)
	if err != nil {
		return "", fmt.Errorf("slack: チーム情報取得失敗: %w", err)
	}

	return team.ID, nil
}

// BotUserID は auth.test でBot自身のユーザーIDを取得します
// 起動時に一度だけ呼び、以降はその値を使い回します
func (c *Client) BotUserID(ctx context.Context) (string, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("slack: auth.test 失敗: %w", err)
	}

	return resp.UserID, nil
}
