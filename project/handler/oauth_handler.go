package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"slack-bubble-relay/project/infrastructure/config"
	"slack-bubble-relay/project/service"

	"github.com/slack-go/slack"
)

// OAuthHandler は Slack OAuth フロー（インストール完了）を処理します
// 取得したトークンは保存せず、そのまま Bubble へ転送します
type OAuthHandler struct {
	cfg      *config.Config
	workflow service.WorkflowPort
}

// NewOAuthHandler は OAuth ハンドラーを作成します
func NewOAuthHandler(cfg *config.Config, workflow service.WorkflowPort) *OAuthHandler {
	return &OAuthHandler{
		cfg:      cfg,
		workflow: workflow,
	}
}

// ServeHTTP は OAuth コールバック処理 (/slack/oauth_redirect)
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "code パラメータが不足しています", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Slack OAuth token 交換 API を呼び出す
	tokenResp, err := slack.GetOAuthV2ResponseContext(
		ctx,
		http.DefaultClient,
		h.cfg.SlackClientID,
		h.cfg.SlackClientSecret,
		code,
		h.cfg.OAuthRedirectURL,
	)
	if err != nil {
		log.Printf("oauth: トークン交換失敗: %v", err)
		http.Error(w, "トークン交換失敗", http.StatusInternalServerError)
		return
	}

	// インストール情報を Bubble へ転送（トークンの保管は Bubble 側の責務）
	install := &service.InstallEvent{
		TeamID:       tokenResp.Team.ID,
		TeamName:     tokenResp.Team.Name,
		BotUserID:    tokenResp.BotUserID,
		AuthedUserID: tokenResp.AuthedUser.ID,
		AccessToken:  tokenResp.AccessToken,
	}
	if err := h.workflow.ForwardInstall(ctx, install); err != nil {
		log.Printf("oauth: インストール通知失敗 (team=%s): %v", install.TeamID, err)
		http.Error(w, "インストール通知失敗", http.StatusInternalServerError)
		return
	}

	// 成功ページへリダイレクト（未設定の場合は完了画面を直接表示）
	if h.cfg.OAuthSuccessURL != "" {
		http.Redirect(w, r, h.cfg.OAuthSuccessURL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>インストール成功</title>
    <style>
        body { font-family: sans-serif; margin: 40px; }
        .success { color: green; font-size: 18px; font-weight: bold; }
    </style>
</head>
<body>
    <div class="success">✓ Slack 連携がインストールされました！</div>
    <p>チャンネルで @Bot をメンションするか、BotにDMを送って利用を開始できます。</p>
</body>
</html>
`)
}
