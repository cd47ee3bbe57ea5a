package httpsec

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"testing"
	"time"
)

func sign(secret, timestamp, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return fmt.Sprintf("v0=%x", mac.Sum(nil))
}

func TestVerifySlackSignature(t *testing.T) {
	const secret = "test-secret"
	body := `{"type":"event_callback"}`
	now := fmt.Sprint(time.Now().Unix())

	// 正しい署名は通る
	if err := VerifySlackSignature(secret, sign(secret, now, body), now, body); err != nil {
		t.Fatalf("正しい署名が拒否されました: %v", err)
	}

	// 署名不一致は拒否
	if err := VerifySlackSignature(secret, "v0=deadbeef", now, body); err == nil {
		t.Fatal("不正な署名が受理されました")
	}

	// 別のシークレットで作った署名も拒否
	if err := VerifySlackSignature(secret, sign("other-secret", now, body), now, body); err == nil {
		t.Fatal("別シークレットの署名が受理されました")
	}

	// 古いタイムスタンプは拒否（リプレイ攻撃対策）
	old := fmt.Sprint(time.Now().Add(-10 * time.Minute).Unix())
	if err := VerifySlackSignature(secret, sign(secret, old, body), old, body); err == nil {
		t.Fatal("期限切れタイムスタンプが受理されました")
	}

	// タイムスタンプが数値でない場合も拒否
	if err := VerifySlackSignature(secret, sign(secret, "abc", body), "abc", body); err == nil {
		t.Fatal("不正なタイムスタンプが受理されました")
	}
}
