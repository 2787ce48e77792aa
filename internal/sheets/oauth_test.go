package sheets

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestToken_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}

	require.NoError(t, saveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
}

func TestLoadToken_MissingFile(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestGetOrCreateToken_UsesStoredToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	stored := &oauth2.Token{
		AccessToken: "access",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
	require.NoError(t, saveToken(path, stored))

	// A valid stored token is returned as-is, no consent flow and no
	// network traffic.
	got, err := GetOrCreateToken(context.Background(), OAuth2Config{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenFile:    path,
	})
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
}
