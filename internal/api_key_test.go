package internal_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"service-exchange/internal"
)

type mockKeyRepo struct {
	mock.Mock
}

func (m *mockKeyRepo) FindByHash(ctx context.Context, keyHash string) (*internal.APIKey, error) {
	args := m.Called(ctx, keyHash)
	key, _ := args.Get(0).(*internal.APIKey)
	return key, args.Error(1)
}

func TestAPIKeyValidator_HashesWithEncodingKey(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("raw-key"))
	want := hex.EncodeToString(mac.Sum(nil))

	stored := &internal.APIKey{Active: true, Drivers: []string{"cnb"}}
	repo := &mockKeyRepo{}
	repo.On("FindByHash", mock.Anything, want).Return(stored, nil).Once()

	v := internal.NewAPIKeyValidator(repo, " secret ")
	assert.Equal(t, want, v.Hash("raw-key"))

	key, err := v.Validate(context.Background(), " raw-key ")

	require.NoError(t, err)
	assert.Same(t, stored, key)
	repo.AssertExpectations(t)
}

func TestAPIKeyValidator_EmptyKey(t *testing.T) {
	repo := &mockKeyRepo{}

	key, err := internal.NewAPIKeyValidator(repo, "secret").Validate(context.Background(), "  ")

	require.NoError(t, err)
	assert.Nil(t, key)
	repo.AssertNotCalled(t, "FindByHash", mock.Anything, mock.Anything)
}

func TestAPIKey_AllowsDriver(t *testing.T) {
	all := &internal.APIKey{Active: true}
	assert.True(t, all.AllowsDriver("ecb"))

	scoped := &internal.APIKey{Active: true, Drivers: []string{"cnb", " ECB "}}
	assert.True(t, scoped.AllowsDriver("CNB"))
	assert.True(t, scoped.AllowsDriver("ecb"))
	assert.False(t, scoped.AllowsDriver("currencyfreaks"))
}
