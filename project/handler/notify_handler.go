package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"slack-bubble-relay/project/domain"
	"slack-bubble-relay/project/dto"
	"slack-bubble-relay/project/service"
)

// NotifyHandler は Bubble からの通知依頼 (/bubble/notify) を処理します
type NotifyHandler struct {
	relayService service.RelayService
}

// NewNotifyHandler は通知ハンドラーを作成します
func NewNotifyHandler(relayService service.RelayService) *NotifyHandler {
	return &NotifyHandler{
		relayService: relayService,
	}
}

// ServeHTTP は通知送信エンドポイントです
// 必須項目が欠けていれば400、送信に失敗すれば500を返します
func (h *NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req dto.BubbleNotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"JSON パース失敗"}`)
		return
	}
	defer r.Body.Close()

	n := domain.Notification{
		TargetID: req.SlackUserID,
		Message:  req.Message,
		ThreadTs: req.ThreadTs,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.relayService.Notify(ctx, &n); err != nil {
		if errors.Is(err, domain.ErrInvalid) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"必須パラメータが不足しています"}`)
			return
		}

		log.Printf("通知送信エラー (target=%s): %v", n.TargetID, err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"通知の送信に失敗しました"}`)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"success":true}`)
}
