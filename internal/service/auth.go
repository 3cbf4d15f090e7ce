package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const operatorRole = "operator"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("jwt secret key is empty")
)

// AuthService issues and checks the bearer tokens of the relay operator.
type AuthService interface {
	GenerateToken(subject string) (string, error)
	ParseToken(token string) (string, error)
}

type authServiceImpl struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(secretKey string, ttl time.Duration) (AuthService, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}

	return &authServiceImpl{
		secretKey: secretKey,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

func (that *authServiceImpl) GenerateToken(subject string) (string, error) {
	claims := jwt.MapClaims{}
	claims["sub"] = subject
	claims["role"] = operatorRole
	claims["exp"] = that.now().Add(that.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(that.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseToken verifies signature, expiry and role and returns the subject.
func (that *authServiceImpl) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(that.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	if role, _ := claims["role"].(string); role != operatorRole {
		return "", fmt.Errorf("%w: role %q", ErrInvalidToken, role)
	}

	subject, _ := claims["sub"].(string)

	return subject, nil
}
