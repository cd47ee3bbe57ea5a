package service

import (
	"regexp"
	"strings"
)

// mentionPattern は <@USERID> 形式のメンショントークンにマッチします
var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// MentionToken は本文中のメンショントークン1つを表します
type MentionToken struct {
	// UserID はトークンが参照するユーザーID
	UserID string

	// Raw はマッチしたトークン文字列そのもの（<@USERID>）
	Raw string

	// Position は本文中でのトークンの開始位置
	Position int
}

// ParseMentions はテキストからメンショントークンを抽出します
// 戻り値は (Bot自身のトークンを除去した本文, Bot以外のトークン一覧（出現順）, Botトークンの有無) です
//   - Botのトークンは最初の1つだけを本文から除去します（Slackは1度しか挿入しないため十分）
//   - Bot以外のトークンは本文に残したまま、一覧として別途返します
//   - 同一ユーザーが2回メンションされた場合はトークンも2つになります（重複除去しない）
func ParseMentions(text, botUserID string) (string, []MentionToken, bool) {
	matches := mentionPattern.FindAllStringSubmatchIndex(text, -1)

	var tokens []MentionToken
	botFound := false
	stripped := text

	for _, m := range matches {
		// m = [開始, 終了, グループ1開始, グループ1終了]
		raw := text[m[0]:m[1]]
		userID := text[m[2]:m[3]]

		if botUserID != "" && userID == botUserID {
			if !botFound {
				botFound = true
				// 最初のBotトークンのみ除去
				stripped = strings.TrimSpace(strings.Replace(text, raw, "", 1))
			}
			continue
		}

		tokens = append(tokens, MentionToken{
			UserID:   userID,
			Raw:      raw,
			Position: m[0],
		})
	}

	return stripped, tokens, botFound
}
