package helper

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(errors.New("boom")))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKey(&pgconn.PgError{Code: "23503"}))
}

func TestTokenRoundTrip(t *testing.T) {
	auth := SetupAuth("secret", time.Hour)

	token, err := auth.GenerateToken(7, "jane@example.org", "Applicant")
	require.NoError(t, err)

	claims, err := auth.VerifyToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "jane@example.org", claims.Email)
	assert.Equal(t, "Applicant", claims.Role)

	claims, err = auth.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
}

func TestVerifyTokenRejects(t *testing.T) {
	auth := SetupAuth("secret", time.Hour)
	other := SetupAuth("other-secret", time.Hour)

	token, err := other.GenerateToken(1, "a@b.c", "Admin")
	require.NoError(t, err)

	_, err = auth.VerifyToken(token)
	assert.Error(t, err)

	_, err = auth.VerifyToken("")
	assert.EqualError(t, err, "missing token")

	_, err = auth.VerifyToken("Bearer ")
	assert.Error(t, err)

	expired := Auth{Secret: "secret", TTL: -time.Minute}
	token, err = expired.GenerateToken(1, "a@b.c", "Admin")
	require.NoError(t, err)
	_, err = auth.VerifyToken(token)
	assert.EqualError(t, err, "token expired")
}

func TestGenerateTokenRequiresInputs(t *testing.T) {
	auth := SetupAuth("secret", time.Hour)
	_, err := auth.GenerateToken(0, "a@b.c", "Admin")
	assert.Error(t, err)
	_, err = auth.GenerateToken(1, "", "Admin")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword("correct horse", hash))
	assert.Error(t, VerifyPassword("wrong horse", hash))
}
