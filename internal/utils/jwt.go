package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"hospital-ehr-server/internal/config"
	"hospital-ehr-server/internal/models"
)

// Claims represents the JWT claims.
type Claims struct {
	AccountID uint              `json:"account_id"`
	Role      models.Role       `json:"role"`
	PartyType *models.PartyType `json:"party_type,omitempty"`
	PartyID   *uint             `json:"party_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateTokens generates both access and refresh tokens for an account.
func GenerateTokens(account *models.UserAccount, cfg *config.Config) (accessToken string, refreshToken string, err error) {
	accessToken, err = generateToken(account, cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationMinutes)*time.Minute)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = generateToken(account, cfg.JWTRefreshSecret,
		time.Duration(cfg.JWTRefreshExpirationHours)*time.Hour)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func generateToken(account *models.UserAccount, secret string, lifetime time.Duration) (string, error) {
	claims := &Claims{
		AccountID: account.AccountID,
		Role:      account.Role,
		PartyType: account.PartyType,
		PartyID:   account.PartyID,
		RegisteredClaims: jwt.RegisteredClaims{
			// The token id keeps two tokens minted within the same second
			// distinct, which refresh-token rotation depends on.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("%d", account.AccountID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a JWT token.
func ValidateToken(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
