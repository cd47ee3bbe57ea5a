package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"slack-bubble-relay/project/handler"
	"slack-bubble-relay/project/infrastructure/bubble"
	"slack-bubble-relay/project/infrastructure/config"
	"slack-bubble-relay/project/infrastructure/slack"
	"slack-bubble-relay/project/service"
)

func main() {
	ctx := context.Background()

	// 1. 設定を読み込む
	cfg, err := config.NewConfig(ctx)
	if err != nil {
		log.Fatalf("設定読み込み失敗: %v", err)
	}

	// 2. 依存関係を初期化
	// Slack API ポート実装
	slackClient := slack.NewClient(cfg.SlackBotToken)

	// BotユーザーID。明示設定がなければ auth.test で解決
	botUserID := cfg.SlackBotUserID
	if botUserID == "" {
		id, err := slackClient.BotUserID(ctx)
		if err != nil {
			// 解決できなくても起動は続行（メンション除去が効かなくなるだけ）
			log.Printf("BotユーザーID解決失敗: %v", err)
		} else {
			botUserID = id
		}
	}

	// Bubble ワークフローポート実装
	bubbleClient := bubble.NewClient(cfg)
	defer bubbleClient.Close()

	// 3. サービス層を初期化
	relayService := service.NewRelayService(slackClient, bubbleClient, botUserID)

	// 4. HTTP ハンドラーを設定
	mux := http.NewServeMux()

	// Slack イベント受信
	mux.Handle("/slack/events", handler.NewEventsHandler(cfg.SlackSigningSecret, relayService))

	// Bubble からの通知依頼
	mux.Handle("/bubble/notify", handler.NewNotifyHandler(relayService))

	// OAuth コールバック
	mux.Handle("/slack/oauth_redirect", handler.NewOAuthHandler(cfg, bubbleClient))

	// ヘルスチェック
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// 5. サーバー起動
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := fmt.Sprintf(":%s", port)
	log.Printf("サーバー起動: %s", addr)

	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Fatalf("サーバーエラー: %v", err)
	}
}
