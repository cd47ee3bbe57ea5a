package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postNotify(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bubble/notify", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNotifyHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		notifyErr  error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "正常系",
			body:       `{"slackUserId":"U123","message":"通知です"}`,
			wantStatus: http.StatusOK,
			wantBody:   `"success":true`,
		},
		{
			name:       "thread_tsつきも受理",
			body:       `{"slackUserId":"C123","message":"通知です","thread_ts":"1000.1"}`,
			wantStatus: http.StatusOK,
			wantBody:   `"success":true`,
		},
		{
			name:       "slackUserId欠落は400",
			body:       `{"message":"通知です"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"error"`,
		},
		{
			name:       "message欠落は400",
			body:       `{"slackUserId":"U123"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"error"`,
		},
		{
			name:       "不正なJSONは400",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"error"`,
		},
		{
			name:       "送信失敗は500",
			body:       `{"slackUserId":"U123","message":"通知です"}`,
			notifyErr:  errors.New("channel_not_found"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockRelayService()
			svc.notifyErr = tt.notifyErr
			h := NewNotifyHandler(svc)

			rec := postNotify(t, h, tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body=%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want contains %s", rec.Body.String(), tt.wantBody)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q", got)
			}
		})
	}
}
