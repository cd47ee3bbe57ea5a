package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slack-bubble-relay/project/domain"
	"slack-bubble-relay/project/service"
)

// mockRelayService は service.RelayService のモック実装です
// イベント処理は非同期で呼ばれるため、呼び出しをチャネルで通知します
type mockRelayService struct {
	mentionCh chan *service.MessageEvent
	dmCh      chan *service.MessageEvent
	notifyErr error
}

func newMockRelayService() *mockRelayService {
	return &mockRelayService{
		mentionCh: make(chan *service.MessageEvent, 1),
		dmCh:      make(chan *service.MessageEvent, 1),
	}
}

func (m *mockRelayService) OnMention(ctx context.Context, ev *service.MessageEvent) error {
	m.mentionCh <- ev
	return nil
}

func (m *mockRelayService) OnDirectMessage(ctx context.Context, ev *service.MessageEvent) error {
	m.dmCh <- ev
	return nil
}

func (m *mockRelayService) Notify(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return m.notifyErr
}

func postEvents(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/slack/events", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// waitNone は指定チャネルに何も届かないことを確認します
func waitNone(t *testing.T, ch chan *service.MessageEvent) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("イベント処理が発生してはいけない: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventsHandlerURLVerification(t *testing.T) {
	svc := newMockRelayService()
	h := NewEventsHandler("", svc)

	rec := postEvents(t, h, `{"type":"url_verification","challenge":"abc123"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("レスポンスJSONパース失敗: %v", err)
	}
	if resp.Challenge != "abc123" {
		t.Errorf("challenge = %q, want %q", resp.Challenge, "abc123")
	}

	// ハンドシェイクは副作用を持たない
	waitNone(t, svc.mentionCh)
	waitNone(t, svc.dmCh)
}

func TestEventsHandlerAppMention(t *testing.T) {
	svc := newMockRelayService()
	h := NewEventsHandler("", svc)

	body := `{
		"type": "event_callback",
		"team_id": "T123",
		"event": {
			"type": "app_mention",
			"user": "U111",
			"text": "<@UBOT1> hello",
			"channel": "C123",
			"ts": "1000.1",
			"thread_ts": "999.9"
		}
	}`
	rec := postEvents(t, h, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	select {
	case ev := <-svc.mentionCh:
		if ev.TeamID != "T123" || ev.ChannelID != "C123" || ev.UserID != "U111" {
			t.Errorf("イベント変換が不正: %+v", ev)
		}
		if ev.MessageTS != "1000.1" || ev.ThreadTs != "999.9" {
			t.Errorf("TS変換が不正: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("メンション処理が呼ばれませんでした")
	}
}

func TestEventsHandlerDirectMessage(t *testing.T) {
	svc := newMockRelayService()
	h := NewEventsHandler("", svc)

	body := `{
		"type": "event_callback",
		"team_id": "T123",
		"event": {
			"type": "message",
			"channel_type": "im",
			"user": "U111",
			"text": "hello",
			"channel": "D123",
			"ts": "1000.1"
		}
	}`
	postEvents(t, h, body)

	select {
	case ev := <-svc.dmCh:
		if ev.ChannelID != "D123" || ev.Text != "hello" {
			t.Errorf("イベント変換が不正: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("DM処理が呼ばれませんでした")
	}
}

// TestEventsHandlerIgnored は処理対象外のイベントが黙って無視されることを確認します
func TestEventsHandlerIgnored(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "bot_idつきメッセージ（無限ループ対策）",
			body: `{"type":"event_callback","event":{"type":"message","channel_type":"im","bot_id":"B999","channel":"D1","text":"loop"}}`,
		},
		{
			name: "bot_message サブタイプ",
			body: `{"type":"event_callback","event":{"type":"app_mention","subtype":"bot_message","channel":"C1","text":"<@UBOT1>"}}`,
		},
		{
			name: "im以外のmessageイベント",
			body: `{"type":"event_callback","event":{"type":"message","channel_type":"channel","channel":"C1","text":"hi"}}`,
		},
		{
			name: "eventなし",
			body: `{"type":"event_callback"}`,
		},
		{
			name: "event_callback以外",
			body: `{"type":"app_rate_limited"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockRelayService()
			h := NewEventsHandler("", svc)

			rec := postEvents(t, h, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			waitNone(t, svc.mentionCh)
			waitNone(t, svc.dmCh)
		})
	}
}

// TestEventsHandlerSignature は署名検証が設定時のみ有効になることを確認します
func TestEventsHandlerSignature(t *testing.T) {
	const secret = "test-secret"
	svc := newMockRelayService()
	h := NewEventsHandler(secret, svc)

	body := `{"type":"event_callback","event":{"type":"app_mention","channel":"C1","text":"<@UBOT1> hi","ts":"1.1"}}`

	// 不正な署名は401
	req := httptest.NewRequest(http.MethodPost, "/slack/events", bytes.NewReader([]byte(body)))
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")
	req.Header.Set("X-Slack-Request-Timestamp", fmt.Sprint(time.Now().Unix()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	waitNone(t, svc.mentionCh)

	// 正しい署名は受理される
	timestamp := fmt.Sprint(time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	signature := fmt.Sprintf("v0=%x", mac.Sum(nil))

	req = httptest.NewRequest(http.MethodPost, "/slack/events", bytes.NewReader([]byte(body)))
	req.Header.Set("X-Slack-Signature", signature)
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	select {
	case <-svc.mentionCh:
	case <-time.After(time.Second):
		t.Fatal("署名検証通過後にメンション処理が呼ばれませんでした")
	}

	// url_verification は署名なしでも応答する
	rec = postEvents(t, h, `{"type":"url_verification","challenge":"xyz"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("url_verification status = %d, want 200", rec.Code)
	}
}
