package config

import (
	"context"
	"fmt"
	"os"

	"slack-bubble-relay/project/infrastructure/secret"
)

// Config は環境変数から読み込まれるアプリケーション設定を表します
// 起動時に一度だけ構築し、以降は読み取り専用で各コンポーネントに渡します
type Config struct {
	// Slack API設定
	SlackBotToken      string // Secret Manager から読み込み（フォールバックあり）
	SlackBotUserID     string // 未設定の場合は起動時に auth.test で解決
	SlackSigningSecret string // 未設定の場合は署名検証をスキップ

	// OAuth設定（インストールフローを使わない場合は未設定で可）
	SlackClientID     string
	SlackClientSecret string // Secret Manager から読み込み（フォールバックあり）
	OAuthRedirectURL  string
	OAuthSuccessURL   string // 未設定の場合はインストール完了画面を直接表示

	// Bubble設定
	BubbleWorkflowURL string // メッセージ転送先ワークフロー
	BubbleAPIToken    string // Secret Manager から読み込み（フォールバックあり）
	BubbleInstallURL  string // インストール通知先ワークフロー（OAuth利用時のみ）
}

// NewConfig は環境変数から設定を読み込み、Config構造体を返します
// GCP_PROJECT が設定されている場合、センシティブな情報（トークン類）は
// Secret Manager から取得し、未登録のシークレットのみ環境変数にフォールバックします
func NewConfig(ctx context.Context) (*Config, error) {
	var mgr *secret.Manager
	if project := os.Getenv("GCP_PROJECT"); project != "" {
		m, err := secret.NewManager(ctx, project)
		if err != nil {
			return nil, fmt.Errorf("config: Secret Manager 初期化失敗: %w", err)
		}
		defer m.Close()
		mgr = m
	}

	slackBotToken, err := resolveSecret(ctx, mgr, "slack-bot-token", "SLACK_BOT_TOKEN")
	if err != nil {
		return nil, fmt.Errorf("config: SLACK_BOT_TOKEN 取得失敗: %w", err)
	}
	if slackBotToken == "" {
		return nil, fmt.Errorf("config: SLACK_BOT_TOKEN が設定されていません")
	}

	bubbleAPIToken, err := resolveSecret(ctx, mgr, "bubble-api-token", "BUBBLE_API_TOKEN")
	if err != nil {
		return nil, fmt.Errorf("config: BUBBLE_API_TOKEN 取得失敗: %w", err)
	}
	if bubbleAPIToken == "" {
		return nil, fmt.Errorf("config: BUBBLE_API_TOKEN が設定されていません")
	}

	slackClientSecret, err := resolveSecret(ctx, mgr, "slack-client-secret", "SLACK_CLIENT_SECRET")
	if err != nil {
		return nil, fmt.Errorf("config: SLACK_CLIENT_SECRET 取得失敗: %w", err)
	}

	config := &Config{
		// Slack API設定
		SlackBotToken:      slackBotToken,
		SlackBotUserID:     os.Getenv("SLACK_BOT_USER_ID"),
		SlackSigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),

		// OAuth設定
		SlackClientID:     os.Getenv("SLACK_CLIENT_ID"),
		SlackClientSecret: slackClientSecret,
		OAuthRedirectURL:  os.Getenv("OAUTH_REDIRECT_URL"),
		OAuthSuccessURL:   os.Getenv("OAUTH_SUCCESS_URL"),

		// Bubble設定
		BubbleWorkflowURL: mustGetEnv("BUBBLE_WORKFLOW_URL"),
		BubbleAPIToken:    bubbleAPIToken,
		BubbleInstallURL:  os.Getenv("BUBBLE_INSTALL_URL"),
	}

	return config, nil
}

// resolveSecret は Secret Manager からシークレットを取得します
// マネージャー未設定、またはシークレット未登録の場合は環境変数の値を返します
func resolveSecret(ctx context.Context, mgr *secret.Manager, secretName, envKey string) (string, error) {
	if mgr == nil {
		return os.Getenv(envKey), nil
	}

	value, err := mgr.GetSecret(ctx, secretName)
	if err != nil {
		if secret.IsNotFound(err) {
			return os.Getenv(envKey), nil
		}
		return "", err
	}

	return value, nil
}

// mustGetEnv は環境変数を取得し、存在しない場合はパニックします
func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable not set: %s", key))
	}
	return value
}
