package http

import (
	"net/http"
	"strings"

	"fanbase-quiz-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier extracts the acting user from a bearer token issued by the
// hosted identity provider (HS256, shared secret; claims "sub" and
// "username"). A missing or invalid token means anonymous play, never a
// rejected request; handlers that require identity check the result.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

func (v *TokenVerifier) UserFromRequest(r *http.Request) (domain.User, bool) {
	if len(v.secret) == 0 {
		return domain.User{}, false
	}
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return domain.User{}, false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return domain.User{}, false
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.User{}, false
	}
	username, _ := claims["username"].(string)
	return domain.User{ID: sub, DisplayName: username}, true
}
