package handler

import (
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"
)

var errMissingSubject = errors.New("token has no subject claim")

// userIDFromToken validates the bearer token issued by the auth service and
// returns the subject claim, which becomes the connection's user id.
func (h *Handler) userIDFromToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.Cfg.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenUnverifiable
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errMissingSubject
	}
	return subject, nil
}
