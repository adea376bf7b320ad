package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"projectdesk/model"
	"projectdesk/policy"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tokenIssuer = "projectdesk"

var ErrInvalidToken = errors.New("invalid or revoked token")

type AccessClaims struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues HS256 bearer tokens backed by personal_access_tokens
// rows. A token is valid only while its row exists.
type TokenService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
}

func NewTokenService(db *gorm.DB, secret string, ttl time.Duration) *TokenService {
	return &TokenService{db: db, secret: []byte(secret), ttl: ttl}
}

func (s *TokenService) Issue(ctx context.Context, user *model.User, name string) (string, error) {
	now := time.Now()
	row := model.PersonalAccessToken{
		UserID:    user.ID,
		Name:      name,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	claims := &AccessClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        row.TokenID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Authenticate verifies the signature and expiry of raw, then checks that the
// token has not been revoked. The role comes from the users table, not the claim.
func (s *TokenService) Authenticate(ctx context.Context, raw string) (policy.Principal, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.ID == "" {
		return policy.Principal{}, ErrInvalidToken
	}

	db := s.db.WithContext(ctx)
	var row model.PersonalAccessToken
	err = db.Preload("User").
		Where("token_id = ? AND user_id = ? AND expires_at > ?", claims.ID, claims.UserID, time.Now()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return policy.Principal{}, ErrInvalidToken
	}
	if err != nil {
		return policy.Principal{}, err
	}

	if err := db.Model(&model.PersonalAccessToken{}).Where("id = ?", row.ID).Update("last_used_at", time.Now()).Error; err != nil {
		log.Printf("touch token %d: %v", row.ID, err)
	}

	return policy.Principal{ID: row.UserID, Role: row.User.Role, TokenID: row.TokenID}, nil
}

// Revoke deletes the row behind one token. Other tokens of the user stay valid.
func (s *TokenService) Revoke(ctx context.Context, tokenID string) error {
	return s.db.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&model.PersonalAccessToken{}).Error
}

func (s *TokenService) PruneExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&model.PersonalAccessToken{})
	return res.RowsAffected, res.Error
}
