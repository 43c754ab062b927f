package utils

import (
	"errors"
	"time"

	"appointly/config"

	"github.com/golang-jwt/jwt"
)

var errNoSecret = errors.New("JWT_SECRET is not configured")

func secretKey() ([]byte, error) {
	if config.AppConfig.JWTSecret == "" {
		return nil, errNoSecret
	}
	return []byte(config.AppConfig.JWTSecret), nil
}

// GenerateToken creates a signed JWT for a caller (client, provider or admin).
// The token expires after the specified duration.
func GenerateToken(subject, role string, duration time.Duration) (string, error) {
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	key, err := secretKey()
	if err != nil {
		return nil, err
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	})
}

// ExtractClaims returns the subject and role of a valid token.
func ExtractClaims(tokenString string) (string, string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ := claims["role"].(string)
	return sub, role, nil
}
