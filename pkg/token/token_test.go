package token

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	InitSecret("test-secret")

	t.Run("round trip", func(t *testing.T) {
		const subject = "0190f1f0-0000-7000-8000-000000000001"
		tokenStr, err := Issue(subject, time.Hour)
		if err != nil {
			t.Fatalf("签发令牌失败: %v", err)
		}

		got, err := Verify(tokenStr)
		if err != nil {
			t.Fatalf("校验令牌失败: %v", err)
		}
		if got != subject {
			t.Errorf("subject不匹配: got %s, want %s", got, subject)
		}
	})

	t.Run("tampered payload is rejected", func(t *testing.T) {
		tokenStr, err := Issue("user-a", time.Hour)
		if err != nil {
			t.Fatalf("签发令牌失败: %v", err)
		}

		parts := strings.Split(tokenStr, ".")
		tampered := parts[0][:len(parts[0])-2] + "xx" + "." + parts[1]
		if _, err := Verify(tampered); err == nil {
			t.Error("被篡改的令牌不应通过校验")
		}
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		tokenStr, err := Issue("user-a", time.Hour)
		if err != nil {
			t.Fatalf("签发令牌失败: %v", err)
		}

		InitSecret("another-secret")
		defer InitSecret("test-secret")
		if _, err := Verify(tokenStr); err == nil {
			t.Error("换密钥后旧令牌不应通过校验")
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		tokenStr, err := Issue("user-a", -time.Minute)
		if err != nil {
			t.Fatalf("签发令牌失败: %v", err)
		}

		if _, err := Verify(tokenStr); err != ErrTokenExpired {
			t.Errorf("过期令牌应返回ErrTokenExpired, got %v", err)
		}
	})

	t.Run("malformed tokens are rejected", func(t *testing.T) {
		for _, bad := range []string{"", "abc", "a.b.c", "!!!.???"} {
			if _, err := Verify(bad); err == nil {
				t.Errorf("畸形令牌 %q 不应通过校验", bad)
			}
		}
	})
}
