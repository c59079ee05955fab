package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"trailmate/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenTypeTemp    = "temp_signup"
)

// TokenService issues and validates the session JWTs and fronts the
// token store for refresh-token persistence and the access blacklist.
type TokenService struct {
	store      repositories.TokenStore
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a new TokenService.
func NewTokenService(store repositories.TokenStore, jwtSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		store:      store,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// RefreshTTL exposes the refresh token lifetime for cookie expiry.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// CreateAccessToken issues a short-lived access JWT for a user.
func (s *TokenService) CreateAccessToken(email, userID string) (string, error) {
	return s.createToken(tokenTypeAccess, email, userID, s.accessTTL)
}

// CreateRefreshToken issues a refresh JWT for a user.
func (s *TokenService) CreateRefreshToken(email, userID string) (string, error) {
	return s.createToken(tokenTypeRefresh, email, userID, s.refreshTTL)
}

func (s *TokenService) createToken(typ, email, userID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"typ":     typ,
		"email":   email,
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(), // Token expiration time
		"iat":     time.Now().Unix(),          // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s token: %w", typ, err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *TokenService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// EmailFromToken extracts the email claim from a valid token.
func (s *TokenService) EmailFromToken(tokenString string) (string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("%w: token carries no email claim", ErrInvalidToken)
	}
	return email, nil
}

// SaveRefreshToken persists a refresh token keyed by email for its full lifetime.
func (s *TokenService) SaveRefreshToken(ctx context.Context, email, token string) error {
	return s.store.SaveRefreshToken(ctx, email, token, s.refreshTTL)
}

// DeleteRefreshToken removes the persisted refresh token for a user.
func (s *TokenService) DeleteRefreshToken(ctx context.Context, email string) error {
	return s.store.DeleteRefreshToken(ctx, email)
}

// BlacklistAccessToken revokes an access token for its remaining
// lifetime. An already expired or unparseable token gets the full access
// TTL as an upper bound so revocation always outlives the token.
func (s *TokenService) BlacklistAccessToken(ctx context.Context, token, reason string) error {
	ttl := s.accessTTL
	if claims, err := s.ValidateToken(token); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			remaining := time.Until(time.Unix(int64(exp), 0))
			if remaining <= 0 {
				// Nothing to revoke, the token can no longer authenticate.
				return nil
			}
			ttl = remaining
		}
	}
	return s.store.BlacklistAccessToken(ctx, token, reason, ttl)
}

// IsBlacklisted reports whether an access token has been revoked.
func (s *TokenService) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return s.store.IsBlacklisted(ctx, token)
}

// CreateTempSignupToken issues a short-lived token carrying the
// provisional profile of a new OAuth user awaiting signup completion.
func (s *TokenService) CreateTempSignupToken(tempUser TempUser, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"typ":           tokenTypeTemp,
		"email":         tempUser.Email,
		"nickname":      tempUser.Nickname,
		"kakao_id":      tempUser.KakaoID,
		"profile_image": tempUser.ProfileImage,
		"exp":           time.Now().Add(ttl).Unix(),
		"iat":           time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate temp signup token: %w", err)
	}
	return tokenString, nil
}

// ParseTempSignupToken validates a temp signup token and reconstructs
// the provisional profile it carries.
func (s *TokenService) ParseTempSignupToken(tokenString string) (*TempUser, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if typ, _ := claims["typ"].(string); typ != tokenTypeTemp {
		return nil, fmt.Errorf("%w: not a temp signup token", ErrInvalidToken)
	}

	email, _ := claims["email"].(string)
	nickname, _ := claims["nickname"].(string)
	kakaoID, _ := claims["kakao_id"].(string)
	profileImage, _ := claims["profile_image"].(string)

	return &TempUser{
		Email:        email,
		Nickname:     nickname,
		KakaoID:      kakaoID,
		ProfileImage: profileImage,
		IsSocial:     true,
	}, nil
}
