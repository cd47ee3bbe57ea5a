package service

import (
	"context"
	"fmt"
	"log"

	"slack-bubble-relay/project/domain"
)

// apologyText はワークフロー転送に失敗した場合にユーザーへ返す定型文です
const apologyText = "申し訳ありません。ただいまリクエストを処理できませんでした。しばらくしてからもう一度お試しください。"

// RelayService はSlackイベントの転送と通知送信を管理するサービスです
type RelayService interface {
	// OnMention は app_mention イベント受信時に呼ばれ、メッセージを Bubble へ転送します
	OnMention(ctx context.Context, ev *MessageEvent) error

	// OnDirectMessage はBot宛DM受信時に呼ばれ、メッセージを Bubble へ転送します
	OnDirectMessage(ctx context.Context, ev *MessageEvent) error

	// Notify は Bubble からの通知依頼を宛先に応じてチャンネル投稿またはDMで送信します
	// 必須項目が欠けている場合は domain.ErrInvalid を返します
	Notify(ctx context.Context, n *domain.Notification) error
}

// relayService は RelayService の実装です
type relayService struct {
	sp        SlackPort
	wp        WorkflowPort
	botUserID string
}

// NewRelayService は RelayService のインスタンスを作成します
// botUserID が空の場合、メンション除去は行われず本文はそのまま転送されます
func NewRelayService(sp SlackPort, wp WorkflowPort, botUserID string) RelayService {
	return &relayService{
		sp:        sp,
		wp:        wp,
		botUserID: botUserID,
	}
}

// OnMention はメンションされたメッセージを Bubble へ転送し、返信があれば中継します
func (rs *relayService) OnMention(ctx context.Context, ev *MessageEvent) error {
	return rs.relay(ctx, ev, true)
}

// OnDirectMessage はBot宛DMを Bubble へ転送し、返信があれば中継します
func (rs *relayService) OnDirectMessage(ctx context.Context, ev *MessageEvent) error {
	return rs.relay(ctx, ev, false)
}

// relay はメッセージ転送の共通フローです
// 転送失敗時はユーザーへ定型のお詫びを投稿し、エラーとしては扱いません
func (rs *relayService) relay(ctx context.Context, ev *MessageEvent, isMention bool) error {
	// メンショントークンを抽出し、Bot自身のトークンを本文から除去
	text, tokens, botFound := ParseMentions(ev.Text, rs.botUserID)
	if isMention && !botFound {
		// メンションイベントなのにBotトークンが見つからない場合も処理は続行する
		log.Printf("relay: app_mention にBotトークンが見つかりません (channel=%s)", ev.ChannelID)
	}

	// 送信者とメンション対象者の表示情報を解決（失敗してもIDで続行）
	sender := rs.resolveParticipant(ctx, ev.UserID)
	mentioned := rs.resolveParticipants(ctx, tokens)

	// team_id がイベントに含まれない場合は team.info で補完
	teamID := ev.TeamID
	if teamID == "" {
		id, err := rs.sp.GetTeamID(ctx)
		if err != nil {
			log.Printf("relay: チーム情報取得失敗（team_id なしで続行）: %v", err)
		} else {
			teamID = id
		}
	}

	env := &Envelope{
		Message:    text,
		SenderID:   ev.UserID,
		SenderName: sender.Name,
		ChannelID:  ev.ChannelID,
		ThreadTs:   ev.ThreadTs,
		TeamID:     teamID,
		Mentioned:  mentioned,
	}

	// 返信のスレッド先。スレッド内ならそのスレッド、メンションなら元メッセージ
	replyTS := ev.ThreadTs
	if replyTS == "" && isMention {
		replyTS = ev.MessageTS
	}

	reply, err := rs.wp.Forward(ctx, env)
	if err != nil {
		// 転送は打ち切り。ユーザーへお詫びを投稿して終了（リトライもキュー投入もしない）
		log.Printf("relay: ワークフロー転送失敗 (channel=%s): %v", ev.ChannelID, err)
		if postErr := rs.sp.PostMessage(ctx, ev.ChannelID, apologyText, replyTS); postErr != nil {
			log.Printf("relay: お詫びメッセージ投稿失敗 (channel=%s): %v", ev.ChannelID, postErr)
		}
		return nil
	}

	// 返信テキストがなければ何もしない（エラーではない）
	if reply == "" {
		return nil
	}

	if err := rs.sp.PostMessage(ctx, ev.ChannelID, reply, replyTS); err != nil {
		// 返信中継の失敗はログのみ（呼び出し元へは伝播させない）
		log.Printf("relay: 返信投稿失敗 (channel=%s): %v", ev.ChannelID, err)
	}

	return nil
}

// Notify は宛先の先頭文字でルーティングして通知を送信します
func (rs *relayService) Notify(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("Notify: 通知検証失敗: %w", err)
	}

	// C/G 始まりはチャンネル投稿（thread_ts を引き継ぐ）
	if n.IsChannelTarget() {
		if err := rs.sp.PostMessage(ctx, n.TargetID, n.Message, n.ThreadTs); err != nil {
			return fmt.Errorf("Notify: チャンネル投稿失敗 (channel=%s): %w", n.TargetID, err)
		}
		return nil
	}

	// それ以外はユーザーIDとみなし、DMチャンネルを開いてから投稿（thread_ts は使わない）
	dmChannelID, err := rs.sp.OpenDM(ctx, n.TargetID)
	if err != nil {
		return fmt.Errorf("Notify: DMチャンネル作成失敗 (user=%s): %w", n.TargetID, err)
	}

	if err := rs.sp.PostMessage(ctx, dmChannelID, n.Message, ""); err != nil {
		return fmt.Errorf("Notify: DM送信失敗 (user=%s): %w", n.TargetID, err)
	}

	return nil
}
