package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/submission-service/internal/auth"
	"github.com/noah-isme/submission-service/internal/users"
	_ "github.com/noah-isme/submission-service/testing"
)

type memStore struct {
	roles map[string]int64
	users map[string]users.NewUser
	err   error
}

func newMemStore() *memStore {
	return &memStore{roles: map[string]int64{}, users: map[string]users.NewUser{}}
}

func (m *memStore) UpsertRole(_ context.Context, name, _ string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if id, ok := m.roles[name]; ok {
		return id, nil
	}
	id := int64(len(m.roles) + 1)
	m.roles[name] = id
	return id, nil
}

func (m *memStore) UpsertUser(_ context.Context, in users.NewUser) (int64, error) {
	m.users[in.Email] = in
	return int64(len(m.users)), nil
}

func TestSeedIsIdempotent(t *testing.T) {
	store := newMemStore()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	var out bytes.Buffer

	require.NoError(t, seed(context.Background(), store, hasher, &out))
	require.NoError(t, seed(context.Background(), store, hasher, &out))

	assert.Len(t, store.roles, 4)
	assert.Len(t, store.users, 4)
	admin := store.users["admin@example.com"]
	assert.Equal(t, store.roles["admin"], admin.RoleID)
	assert.True(t, hasher.Compare("Admin@123", admin.PasswordHash))
	assert.Equal(t, store.roles["viewer"], store.users["viewer@example.com"].RoleID)
}

func TestSeedStopsOnStoreError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("db down")
	err := seed(context.Background(), store, auth.NewPasswordHasher(bcrypt.MinCost), &bytes.Buffer{})
	assert.Error(t, err)
	assert.Empty(t, store.users)
}

func TestCreateAdmin(t *testing.T) {
	store := newMemStore()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	var out bytes.Buffer

	err := createAdmin(context.Background(), store, hasher, "root", "root@example.com", "weak", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")

	err = createAdmin(context.Background(), store, hasher, "root", "root@example.com", "Aaä1!ä", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
	assert.Empty(t, store.users)

	require.NoError(t, createAdmin(context.Background(), store, hasher, "root", "root@example.com", "Sup3r#Secret", &out))
	assert.Equal(t, store.roles["admin"], store.users["root@example.com"].RoleID)
	assert.Contains(t, out.String(), "root@example.com")

	assert.Error(t, createAdmin(context.Background(), store, hasher, "", "x@example.com", "Sup3r#Secret", &out))
}

func TestGenSecretsProducesDistinctHex(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, genSecrets(defaultRandom, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var values []string
	for _, line := range lines {
		parts := strings.SplitN(line, "=", 2)
		require.Len(t, parts, 2)
		raw, err := hex.DecodeString(parts[1])
		require.NoError(t, err)
		assert.Len(t, raw, 64)
		values = append(values, parts[1])
	}
	assert.NotEqual(t, values[0], values[1])
}

func TestGenSecretsShortRead(t *testing.T) {
	assert.Error(t, genSecrets(strings.NewReader("short"), &bytes.Buffer{}))
}

func TestDecodeToken(t *testing.T) {
	ts, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("b"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)
	token, _, err := ts.GenerateAccessToken(auth.AccessClaims{UserID: 9, Username: "dora", Role: "viewer"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, decodeToken("Bearer "+token, &out))
	assert.Contains(t, out.String(), `"username": "dora"`)

	assert.Error(t, decodeToken("garbage", &bytes.Buffer{}))
}
