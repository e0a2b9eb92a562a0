package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vsinha/vantax/pkg/domain/entities"
)

// Token is the result of a successful login
type Token struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *entities.User `json:"user"`
}

// Claims are the verified contents of an access token
type Claims struct {
	UserID    entities.UserID    `json:"uid"`
	CompanyID entities.CompanyID `json:"cid"`
	Role      entities.Role      `json:"role"`
	jwt.RegisteredClaims
}
