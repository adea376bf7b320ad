package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"projectdesk/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTokenLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "ann", model.RoleProjectManager)
	svc := NewTokenService(db, "secret", time.Hour)

	first, err := svc.Issue(ctx, u, "auth_token")
	require.NoError(t, err)
	second, err := svc.Issue(ctx, u, "auth_token")
	require.NoError(t, err)

	p, err := svc.Authenticate(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, model.RoleProjectManager, p.Role)
	assert.NotEmpty(t, p.TokenID)

	var row model.PersonalAccessToken
	require.NoError(t, db.Where("token_id = ?", p.TokenID).First(&row).Error)
	assert.NotNil(t, row.LastUsedAt)

	require.NoError(t, svc.Revoke(ctx, p.TokenID))
	_, err = svc.Authenticate(ctx, first)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Authenticate(ctx, second)
	assert.NoError(t, err, "other sessions survive logout")
}

func TestAuthenticateSurvivesTouchFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "ann", model.RoleTeamMember)
	svc := NewTokenService(db, "secret", time.Hour)
	raw, err := svc.Issue(ctx, u, "auth_token")
	require.NoError(t, err)

	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("fail_token_touch", func(tx *gorm.DB) {
		if tx.Statement.Table == "personal_access_tokens" {
			tx.AddError(errors.New("disk full"))
		}
	}))

	p, err := svc.Authenticate(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "ann", model.RoleTeamMember)
	svc := NewTokenService(db, "secret", time.Hour)

	raw, err := NewTokenService(db, "other-secret", time.Hour).Issue(ctx, u, "auth_token")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &AccessClaims{UserID: u.ID})
	raw, err = unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPruneExpired(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "ann", model.RoleTeamMember)

	expired := NewTokenService(db, "secret", -time.Minute)
	raw, err := expired.Issue(ctx, u, "auth_token")
	require.NoError(t, err)
	_, err = expired.Authenticate(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenService(db, "secret", time.Hour).Issue(ctx, u, "auth_token")
	require.NoError(t, err)

	n, err := expired.PruneExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
