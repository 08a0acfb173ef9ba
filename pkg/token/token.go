package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// secretKey 存储用于签名的HMAC密钥。
var secretKey []byte

// Claims 定义了身份令牌中被签名的数据结构。
type Claims struct {
	// Subject 是经过验证的用户UUID
	Subject string `json:"sub"`
	// ExpiresAt 是令牌的过期时间（Unix秒）
	ExpiresAt int64 `json:"exp"`
}

var (
	// ErrInvalidToken 表示令牌结构、编码或签名不合法
	ErrInvalidToken = errors.New("令牌无效")
	// ErrTokenExpired 表示令牌已过期
	ErrTokenExpired = errors.New("令牌已过期")
)

// InitSecret 设置HMAC密钥。
// 传入空字符串时会生成一个密码学安全的32字节随机密钥，
// 此时服务重启后所有已签发的令牌都会失效。
func InitSecret(secret string) {
	if secret != "" {
		secretKey = []byte(secret)
		fmt.Println("HMAC密钥已从配置加载。")
		return
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已随机生成（重启后旧令牌将失效）。")
}

// sign 对一段payload字节计算HMAC-SHA256签名。
func sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payload)
	return mac.Sum(nil)
}

// Issue 为一个用户UUID签发身份令牌。
// 令牌格式为 base64url(claims JSON) + "." + base64url(签名)。
// 正常部署中令牌由外部认证服务签发，这里的Issue主要服务于测试和运维工具。
func Issue(subject string, ttl time.Duration) (string, error) {
	claims := Claims{
		Subject:   subject,
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", errors.New("无法序列化令牌claims")
	}

	encodedPayload := base64.RawURLEncoding.EncodeToString(payload)
	encodedSignature := base64.RawURLEncoding.EncodeToString(sign(payload))
	return encodedPayload + "." + encodedSignature, nil
}

// Verify 校验一个令牌的结构、签名和有效期，返回其中的用户UUID。
func Verify(tokenStr string) (string, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 2 {
		return "", ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidToken
	}
	actualSignature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidToken
	}

	// 使用 hmac.Equal 进行时间恒定的比较，防止时序攻击
	if !hmac.Equal(sign(payload), actualSignature) {
		return "", ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	if time.Now().Unix() >= claims.ExpiresAt {
		return "", ErrTokenExpired
	}

	return claims.Subject, nil
}
