package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 15 * time.Minute
	maker := NewMaker(secretKey, tokenTTL)

	tests := []struct {
		name      string
		trainerID string
		email     string
	}{
		{
			name:      "обычный тренер",
			trainerID: "0e3c9306-6d0b-4f7c-9a3e-2f4f5a7c1d22",
			email:     "jan@example.com",
		},
		{
			name:      "email с поддоменом",
			trainerID: "11111111-2222-3333-4444-555555555555",
			email:     "coach@mail.fitness.cz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.trainerID, tt.email)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.trainerID, claims.TrainerID)
			assert.Equal(t, tt.email, claims.Email)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewMaker(secretKey, 15*time.Minute)

	validToken, err := maker.GenerateToken("trainer-1", "jan@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "пустой токен", token: ""},
		{name: "битый токен", token: "invalid.token.here"},
		{name: "просроченный токен", token: createExpiredToken(t, secretKey)},
		{name: "чужой секретный ключ", token: createTokenWithWrongSecret(t)},
		{name: "испорченная подпись", token: validToken + "tampered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func createExpiredToken(t *testing.T, secretKey string) string {
	maker := NewMaker(secretKey, -time.Hour)
	token, err := maker.GenerateToken("trainer-1", "jan@example.com")
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewMaker("wrong_secret_key", 15*time.Minute)
	token, err := wrongMaker.GenerateToken("trainer-1", "jan@example.com")
	require.NoError(t, err)
	return token
}
