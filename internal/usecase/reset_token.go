package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/GoArmGo/BlogApp/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const resetTokenIssuer = "blogapp-password-reset"

type resetClaims struct {
	// Fingerprint привязывает токен к текущему хэшу пароля: после смены пароля токен недействителен
	Fingerprint string `json:"pwd"`
	jwt.RegisteredClaims
}

// ResetTokens выпускает и проверяет токены сброса пароля.
// Токен не хранится на сервере: он подписан секретом и содержит срок действия.
type ResetTokens struct {
	secret  []byte
	timeout time.Duration
	now     func() time.Time
}

func NewResetTokens(secret string, timeout time.Duration) *ResetTokens {
	return &ResetTokens{secret: []byte(secret), timeout: timeout, now: time.Now}
}

func fingerprint(u *domain.User) string {
	sum := sha256.Sum256([]byte(u.PasswordHash))
	return hex.EncodeToString(sum[:8])
}

// Make выпускает токен для пользователя.
func (t *ResetTokens) Make(u *domain.User) (string, error) {
	now := t.now()
	claims := resetClaims{
		Fingerprint: fingerprint(u),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    resetTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.timeout)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// Check проверяет подпись, срок, владельца и отпечаток пароля.
func (t *ResetTokens) Check(u *domain.User, raw string) error {
	var claims resetClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	},
		jwt.WithIssuer(resetTokenIssuer),
		jwt.WithSubject(u.ID.String()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return domain.ErrInvalidToken
	}
	if claims.Fingerprint != fingerprint(u) {
		return domain.ErrInvalidToken
	}
	return nil
}
