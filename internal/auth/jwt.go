package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rifatsekerariot/ariowan/internal/config"
)

// JWTManager issues and validates access tokens for the read API.
// The ingestion webhook is never authenticated.
type JWTManager struct {
	jwtConfig *config.JWTConfig
	apiConfig *config.APIConfig
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(jwtCfg *config.JWTConfig, apiCfg *config.APIConfig) *JWTManager {
	return &JWTManager{
		jwtConfig: jwtCfg,
		apiConfig: apiCfg,
	}
}

// Claims represents JWT claims
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Authenticate checks the admin credential against the configured
// bcrypt hash and returns an access token on success.
func (m *JWTManager) Authenticate(username, password string) (string, error) {
	if username != m.apiConfig.AdminUser {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(m.apiConfig.AdminPasswordHash), []byte(password),
	); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	return m.generateToken(username)
}

// generateToken signs an access token for the given user
func (m *JWTManager) generateToken(username string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.jwtConfig.AccessTokenTTL.Std())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "ariowan",
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

// ValidateToken validates a token
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.jwtConfig.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// HashPassword hashes a password using bcrypt. Used by deployments to
// produce the admin_password_hash config value.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
