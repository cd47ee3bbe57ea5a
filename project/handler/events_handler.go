package handler

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"slack-bubble-relay/project/dto"
	"slack-bubble-relay/project/infrastructure/httpsec"
	"slack-bubble-relay/project/service"
)

// EventsHandler は Slack Events API からのイベントを処理します
type EventsHandler struct {
	signingSecret string
	relayService  service.RelayService
}

// NewEventsHandler はイベントハンドラーを作成します
// signingSecret が空の場合、署名検証はスキップされます
func NewEventsHandler(signingSecret string, relayService service.RelayService) *EventsHandler {
	return &EventsHandler{
		signingSecret: signingSecret,
		relayService:  relayService,
	}
}

// ServeHTTP は Slack イベント受信エンドポイントです
// Slackの配信タイムアウトに間に合うよう、先に200を返してからイベントを非同期で処理します
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "リクエスト本体の読み込み失敗", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// まず url_verification かどうかを確認（署名検証の前に）
	var preCheck struct {
		Type      string `json:"type"`
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(body, &preCheck); err == nil {
		if preCheck.Type == "url_verification" {
			// URL検証はハンドシェイクのみ。イベント処理は行わない
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(dto.SlackChallengeResponse{Challenge: preCheck.Challenge})
			return
		}
	}

	// Slack 署名検証（シークレットが設定されている場合のみ）
	if h.signingSecret != "" {
		signature := r.Header.Get("X-Slack-Signature")
		timestamp := r.Header.Get("X-Slack-Request-Timestamp")
		if err := httpsec.VerifySlackSignature(h.signingSecret, signature, timestamp, string(body)); err != nil {
			http.Error(w, "署名検証失敗", http.StatusUnauthorized)
			return
		}
	}

	var req dto.SlackEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "JSON パース失敗", http.StatusBadRequest)
		return
	}

	// 応答は常に200。処理はバックグラウンドに切り離す
	w.WriteHeader(http.StatusOK)

	if req.Type != "event_callback" {
		return
	}

	go h.dispatch(req)
}

// dispatch は応答済みのリクエストのイベントを処理します
// ここで発生したエラーやパニックはログに残すだけで、HTTPレスポンスには影響しません
func (h *EventsHandler) dispatch(req dto.SlackEventRequest) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("イベント処理パニック (type=%s, channel=%s): %v", req.Event.Type, req.Event.Channel, rec)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.handleEvent(ctx, req); err != nil {
		log.Printf("イベント処理エラー (type=%s, channel=%s): %v", req.Event.Type, req.Event.Channel, err)
	}
}

// handleEvent は個別のイベントを処理します
func (h *EventsHandler) handleEvent(ctx context.Context, req dto.SlackEventRequest) error {
	ev := req.Event

	// Bot自身や他Botの投稿には反応しない（無限ループ対策）
	if ev.BotID != "" || ev.SubType == "bot_message" {
		return nil
	}

	me := service.MessageEvent{
		TeamID:    req.TeamID,
		ChannelID: ev.Channel,
		UserID:    ev.User,
		Text:      ev.Text,
		MessageTS: ev.Timestamp,
		ThreadTs:  ev.ThreadTs,
	}

	switch {
	case ev.Type == "app_mention":
		return h.relayService.OnMention(ctx, &me)
	case ev.Type == "message" && ev.ChannelType == "im":
		return h.relayService.OnDirectMessage(ctx, &me)
	default:
		// 対象外のイベントは黙って無視する
		return nil
	}
}
