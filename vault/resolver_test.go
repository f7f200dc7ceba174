package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-hq/nexus/types"
)

// mapClient is a test backend over a plain map; it counts lookups so tests
// can assert caching behavior.
type mapClient struct {
	secrets map[string]string
	errs    map[string]error
	calls   map[string]int
}

func newMapClient(secrets map[string]string) *mapClient {
	return &mapClient{secrets: secrets, errs: make(map[string]error), calls: make(map[string]int)}
}

func (c *mapClient) GetSecret(_ context.Context, name string) (string, error) {
	c.calls[name]++
	if err, ok := c.errs[name]; ok {
		return "", err
	}
	if v, ok := c.secrets[name]; ok {
		return v, nil
	}
	return "", errors.New("secret not found (404)")
}

func TestResolver_Get(t *testing.T) {
	client := newMapClient(map[string]string{
		"accountchek-login-email": "svc@example.com",
	})
	r := NewResolver(client, nil)

	got, err := r.Get(context.Background(), "AccountChek", types.PurposeLoginEmail)
	require.NoError(t, err)
	assert.Equal(t, "svc@example.com", got)
}

func TestResolver_CachesByNormalizedName(t *testing.T) {
	client := newMapClient(map[string]string{
		"clear-capital-login-password": "hunter2",
	})
	r := NewResolver(client, nil)

	for i := 0; i < 3; i++ {
		got, err := r.GetSecret(context.Background(), "Clear_Capital-Login_Password")
		require.NoError(t, err)
		assert.Equal(t, "hunter2", got)
	}
	assert.Equal(t, 1, client.calls["clear-capital-login-password"], "backend should be hit once")
}

// The cache may only contain keys that were actually requested.
func TestResolver_CacheKeyDiscipline(t *testing.T) {
	client := newMapClient(map[string]string{
		"accountchek-login-url":   "https://verifier.example.com",
		"accountchek-login-email": "svc@example.com",
		"bankvod-login-email":     "other@example.com",
	})
	r := NewResolver(client, nil)

	_, err := r.Get(context.Background(), "accountchek", types.PurposeLoginURL)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"accountchek-login-url"}, r.CachedNames())
}

func TestResolver_FailedLookupNotCached(t *testing.T) {
	client := newMapClient(nil)
	r := NewResolver(client, nil)

	_, err := r.Get(context.Background(), "accountchek", types.PurposeLoginURL)
	require.Error(t, err)
	assert.Empty(t, r.CachedNames())
	assert.True(t, IsMissing(err))
}

func TestResolver_BackendErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		backendErr  error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "tenant mismatch",
			backendErr:  errors.New("AKV10032: Invalid issuer for exchange token"),
			wantCode:    ErrCodeBackend,
			wantMessage: "different tenant",
		},
		{
			name:        "forbidden",
			backendErr:  errors.New("caller is not authorized: Forbidden (403)"),
			wantCode:    ErrCodeBackend,
			wantMessage: "lacks read permission",
		},
		{
			name:        "not found",
			backendErr:  errors.New("secret not found (404)"),
			wantCode:    ErrCodeMissing,
			wantMessage: "does not exist",
		},
		{
			name:        "not found mentioning tenant is still missing",
			backendErr:  errors.New("404 secret not found in tenant xyz"),
			wantCode:    ErrCodeMissing,
			wantMessage: "does not exist",
		},
		{
			name:        "anything else",
			backendErr:  errors.New("dial tcp: i/o timeout"),
			wantCode:    ErrCodeBackend,
			wantMessage: "dial tcp: i/o timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMapClient(nil)
			client.errs["mmi-login-password"] = tt.backendErr
			r := NewResolver(client, nil)

			_, err := r.GetSecret(context.Background(), "mmi-login-password")
			require.Error(t, err)

			var ve *Error
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantCode, ve.Code)
			assert.Contains(t, ve.Message, tt.wantMessage)
			assert.ErrorIs(t, err, tt.backendErr)
		})
	}
}
