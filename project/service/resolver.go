package service

import (
	"context"
	"log"
	"sync"

	"slack-bubble-relay/project/domain"
)

// resolveParticipant はユーザーIDから表示情報を解決します
// 取得に失敗した場合は生のIDを表示名とする代替レコードを返し、エラーは伝播させません
func (rs *relayService) resolveParticipant(ctx context.Context, userID string) domain.Participant {
	info, err := rs.sp.GetUserInfo(ctx, userID)
	if err != nil {
		log.Printf("resolver: ユーザー情報取得失敗 (user=%s): %v", userID, err)
		return domain.FallbackParticipant(userID)
	}

	// 表示名の優先順位: 実名 → アカウント名 → 生のID
	name := info.RealName
	if name == "" {
		name = info.Name
	}
	if name == "" {
		name = userID
	}

	return domain.Participant{
		ID:          userID,
		Name:        name,
		DisplayName: info.DisplayName,
	}
}

// resolveParticipants はメンショントークン一覧を並行に解決します
// 各解決は独立しており、1件の失敗が他をブロックすることはありません。
// 結果の並びは解決の完了順ではなく、本文中の出現順を維持します
func (rs *relayService) resolveParticipants(ctx context.Context, tokens []MentionToken) []domain.Participant {
	participants := make([]domain.Participant, len(tokens))

	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			participants[i] = rs.resolveParticipant(ctx, userID)
		}(i, token.UserID)
	}
	wg.Wait()

	return participants
}
