/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-08 20:40:41
 * @FilePath: \isizulu-corpus\backend\internal\infra\token\jwt_manager.go
 * @LastEditTime: 2025-10-14 11:02:18
 */
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	domain "isizulu-corpus/backend/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	claimTokenType  = "token_type"
	claimTokenID    = "jti"
	tokenTypeAccess = "access"
)

var (
	ErrTokenInvalid   = errors.New("token invalid")
	ErrNotAccessToken = errors.New("not an access token")
)

// Claims 是从访问令牌中解析出的身份信息。
type Claims struct {
	UserID    uint
	Username  string
	IsAdmin   bool
	TokenID   string
	ExpiresAt time.Time
}

// AccessToken 是签发结果，ExpiresIn 单位为秒。
type AccessToken struct {
	Token     string `json:"access_token"`
	ExpiresIn int64  `json:"expires_in"`
	TokenType string `json:"token_type"`
}

// JWTManager 基于 HS256 对称密钥签发与校验访问令牌。
type JWTManager struct {
	secret    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager 创建 JWT 管理器。
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &JWTManager{secret: secret, accessTTL: accessTTL, now: time.Now}
}

// Issue 为指定用户签发访问令牌。
func (m *JWTManager) Issue(user *domain.User) (AccessToken, error) {
	if user == nil {
		return AccessToken{}, errors.New("user is nil")
	}
	expiresAt := m.now().Add(m.accessTTL)

	// 使用 MapClaims，方便后续扩展自定义字段。
	claims := jwt.MapClaims{
		"sub":          strconv.FormatUint(uint64(user.ID), 10),
		"username":     user.Username,
		"exp":          expiresAt.Unix(),
		"iat":          m.now().Unix(),
		"is_admin":     user.IsAdmin,
		claimTokenType: tokenTypeAccess,
		claimTokenID:   uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}

	return AccessToken{
		Token:     signed,
		ExpiresIn: int64(m.accessTTL.Seconds()),
		TokenType: "Bearer",
	}, nil
}

// Parse 校验签名与有效期并提取身份信息。token_type 缺失时按访问令牌处理。
func (m *JWTManager) Parse(raw string) (Claims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}

	if tType, ok := claims[claimTokenType].(string); ok && tType != tokenTypeAccess {
		return Claims{}, ErrNotAccessToken
	}

	userID, err := parseSubject(claims["sub"])
	if err != nil {
		return Claims{}, err
	}

	out := Claims{UserID: userID}
	out.Username, _ = claims["username"].(string)
	out.IsAdmin, _ = claims["is_admin"].(bool)
	out.TokenID, _ = claims[claimTokenID].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func parseSubject(raw any) (uint, error) {
	var subRaw string
	switch v := raw.(type) {
	case string:
		subRaw = v
	case float64:
		if v < 0 {
			return 0, errors.New("invalid subject")
		}
		subRaw = fmt.Sprintf("%.0f", v)
	case json.Number:
		subRaw = v.String()
	default:
		return 0, errors.New("missing subject")
	}

	id64, err := strconv.ParseUint(subRaw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, fmt.Errorf("parse subject %q: invalid", subRaw)
	}
	return uint(id64), nil
}
