package services

import (
	"fmt"
	"time"

	"water-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "water-service"

// JWTService signs the admin cookie. The token only names a session; whether
// the session is still usable is decided by SessionService.
type JWTService struct {
	JWTSecret []byte
}

func NewJWTService(jwtSecret string) *JWTService {
	return &JWTService{
		JWTSecret: []byte(jwtSecret),
	}
}

func (s *JWTService) GenerateToken(session *models.AdminSession) (string, error) {
	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			Issuer:    tokenIssuer,
			Subject:   session.Username,
		},
		SessionID: session.ID,
		Username:  session.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("error generating token string: %w", err)
	}
	return tokenString, nil
}

func (s *JWTService) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&models.Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.JWTSecret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
