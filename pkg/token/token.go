package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// secretKey 是用于HS256签名的密钥，由配置提供或在启动时随机生成。
	secretKey []byte
	issuer    = "reaction-game"
	keyMu     sync.RWMutex
)

// ErrInvalidToken 表示令牌无法通过校验
var ErrInvalidToken = errors.New("无效的访问令牌")

// AccessClaims 是访问令牌携带的声明。Subject 为用户ID的十进制字符串。
type AccessClaims struct {
	jwt.RegisteredClaims
}

// Configure 设置签名密钥与签发者。secret 为空时生成一个进程内随机密钥。
func Configure(secret, iss string) error {
	keyMu.Lock()
	defer keyMu.Unlock()

	if iss != "" {
		issuer = iss
	}
	if secret != "" {
		secretKey = []byte(secret)
		return nil
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("无法生成安全的密钥: %w", err)
	}
	secretKey = key
	return nil
}

func currentKey() ([]byte, string, error) {
	keyMu.RLock()
	defer keyMu.RUnlock()
	if len(secretKey) == 0 {
		return nil, "", errors.New("令牌密钥尚未配置")
	}
	return secretKey, issuer, nil
}

// IssueAccessToken 为用户签发一个访问令牌。正式环境由外部认证服务签发，
// 这里只供开发工具与测试使用。
func IssueAccessToken(userID uint, ttl time.Duration) (string, error) {
	key, iss, err := currentKey()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    iss,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseAccessToken 校验令牌签名、签发者与有效期，并返回其中的用户ID。
func ParseAccessToken(raw string) (uint, error) {
	key, iss, err := currentKey()
	if err != nil {
		return 0, err
	}

	var claims AccessClaims
	_, err = jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(iss),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: subject %q 不是合法的用户ID", ErrInvalidToken, claims.Subject)
	}
	return uint(id), nil
}
