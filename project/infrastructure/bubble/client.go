package bubble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"slack-bubble-relay/project/dto"
	"slack-bubble-relay/project/infrastructure/config"
	"slack-bubble-relay/project/service"
)

// authStrategy は1回の転送試行に対する認証情報の付与方法です
// 先頭から順に試行し、成功した時点で打ち切ります
type authStrategy struct {
	name  string
	apply func(req *http.Request, token string)
}

// authStrategies は試行順の認証方式一覧です
// Bearerヘッダ → クエリパラメータの順。前者が失敗した理由は問わず後者を試します
var authStrategies = []authStrategy{
	{
		name: "bearer",
		apply: func(req *http.Request, token string) {
			req.Header.Set("Authorization", "Bearer "+token)
		},
	},
	{
		name: "query_param",
		apply: func(req *http.Request, token string) {
			q := req.URL.Query()
			q.Set("api_token", token)
			req.URL.RawQuery = q.Encode()
		},
	},
}

// Client は service.WorkflowPort の Bubble ワークフローAPI実装です
type Client struct {
	workflowURL string
	installURL  string
	apiToken    string
	httpClient  *http.Client
}

// NewClient は Bubble クライアントを初期化します
func NewClient(cfg *config.Config) *Client {
	return &Client{
		workflowURL: cfg.BubbleWorkflowURL,
		installURL:  cfg.BubbleInstallURL,
		apiToken:    cfg.BubbleAPIToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Forward はメッセージ封筒をワークフローへ転送し、同期返信テキストを返します
// レスポンスが返信の形をしていない場合は空文字列を返します（エラーにしない）
func (c *Client) Forward(ctx context.Context, env *service.Envelope) (string, error) {
	mentioned := make([]dto.BubbleMentionUser, 0, len(env.Mentioned))
	for _, p := range env.Mentioned {
		mentioned = append(mentioned, dto.BubbleMentionUser{
			ID:          p.ID,
			Name:        p.Name,
			DisplayName: p.DisplayName,
		})
	}

	payload := &dto.BubbleMessagePayload{
		Message:        env.Message,
		SlackUserID:    env.SenderID,
		SlackUserName:  env.SenderName,
		ChannelID:      env.ChannelID,
		ThreadTs:       env.ThreadTs,
		TeamID:         env.TeamID,
		MentionedUsers: mentioned,
	}

	respBody, err := c.post(ctx, c.workflowURL, payload)
	if err != nil {
		return "", fmt.Errorf("bubble: ワークフロー転送失敗: %w", err)
	}

	return extractReply(respBody), nil
}

// ForwardInstall はOAuthインストール完了情報をワークフローへ転送します
func (c *Client) ForwardInstall(ctx context.Context, install *service.InstallEvent) error {
	if c.installURL == "" {
		return fmt.Errorf("bubble: インストール通知先 (BUBBLE_INSTALL_URL) が未設定です")
	}

	payload := &dto.BubbleInstallPayload{
		TeamID:       install.TeamID,
		TeamName:     install.TeamName,
		BotUserID:    install.BotUserID,
		AuthedUserID: install.AuthedUserID,
		AccessToken:  install.AccessToken,
	}

	if _, err := c.post(ctx, c.installURL, payload); err != nil {
		return fmt.Errorf("bubble: インストール通知失敗: %w", err)
	}

	return nil
}

// post はペイロードをJSONとして送信し、認証方式を順に試行します
// 全方式が失敗した場合は最後のエラーを返します
func (c *Client) post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ペイロード JSON 化失敗: %w", err)
	}

	var lastErr error
	for _, strategy := range authStrategies {
		respBody, err := c.attempt(ctx, url, body, strategy)
		if err != nil {
			lastErr = fmt.Errorf("認証方式 %s での送信失敗: %w", strategy.name, err)
			continue
		}
		return respBody, nil
	}

	return nil, lastErr
}

// attempt は指定された認証方式で1回だけ送信します
func (c *Client) attempt(ctx context.Context, url string, body []byte, strategy authStrategy) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成失敗: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	strategy.apply(req, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("リクエスト送信失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンス本体読み込み失敗: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("APIエラー (status=%d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// extractReply はワークフローレスポンスから返信テキストを取り出します
// status が "success" かつ response.response が存在する場合のみ返信とみなし、
// 形が合わないレスポンスはすべて「返信なし」として扱います
func extractReply(respBody []byte) string {
	var wfResp dto.BubbleWorkflowResponse
	if err := json.Unmarshal(respBody, &wfResp); err != nil {
		return ""
	}

	if wfResp.Status != "success" || wfResp.Response == nil {
		return ""
	}

	return wfResp.Response.Response
}

// Close はアイドル接続を解放します
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
