package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/submission-service/internal/auth"
	"github.com/noah-isme/submission-service/internal/roles"
	"github.com/noah-isme/submission-service/internal/users"
)

// seedStore is the write access seeding needs.
type seedStore interface {
	UpsertRole(ctx context.Context, name, description string) (int64, error)
	UpsertUser(ctx context.Context, in users.NewUser) (int64, error)
}

type pgSeedStore struct {
	roles *roles.Repository
	users *users.Repository
}

func (s pgSeedStore) UpsertRole(ctx context.Context, name, description string) (int64, error) {
	return s.roles.Upsert(ctx, name, description)
}

func (s pgSeedStore) UpsertUser(ctx context.Context, in users.NewUser) (int64, error) {
	return s.users.UpsertByEmail(ctx, in)
}

type roleSeed struct {
	name        string
	description string
}

var seedRoles = []roleSeed{
	{roles.Admin, "Full access to every resource"},
	{roles.Manager, "Create, read and update resources"},
	{roles.User, "Create and read resources"},
	{roles.Viewer, "Read-only access"},
}

type demoUser struct {
	username string
	email    string
	password string
	role     string
}

var demoUsers = []demoUser{
	{"admin", "admin@example.com", "Admin@123", roles.Admin},
	{"manager", "manager@example.com", "Manager@123", roles.Manager},
	{"user", "user@example.com", "User@123", roles.User},
	{"viewer", "viewer@example.com", "Viewer@123", roles.Viewer},
}

func seed(ctx context.Context, store seedStore, hasher *auth.PasswordHasher, out io.Writer) error {
	roleIDs := make(map[string]int64, len(seedRoles))
	for _, r := range seedRoles {
		id, err := store.UpsertRole(ctx, r.name, r.description)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", r.name, err)
		}
		roleIDs[r.name] = id
	}
	fmt.Fprintf(out, "→ %d roles\n", len(roleIDs))

	for _, u := range demoUsers {
		hash, err := hasher.Hash(u.password)
		if err != nil {
			return fmt.Errorf("hash %s: %w", u.email, err)
		}
		if _, err := store.UpsertUser(ctx, users.NewUser{
			Username:     u.username,
			Email:        u.email,
			PasswordHash: hash,
			RoleID:       roleIDs[u.role],
		}); err != nil {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
		fmt.Fprintf(out, "→ %-20s %-8s %s\n", u.email, u.role, u.password)
	}
	return nil
}

func createAdmin(ctx context.Context, store seedStore, hasher *auth.PasswordHasher, username, email, password string, out io.Writer) error {
	if username == "" || email == "" || password == "" {
		return errors.New("create-admin: -username, -email and -password are required")
	}
	if res := auth.ValidateStrength(password); !res.IsValid {
		return fmt.Errorf("create-admin: %s", strings.Join(res.Errors, ", "))
	}
	roleID, err := store.UpsertRole(ctx, roles.Admin, seedRoles[0].description)
	if err != nil {
		return fmt.Errorf("create-admin: admin role: %w", err)
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("create-admin: hash: %w", err)
	}
	id, err := store.UpsertUser(ctx, users.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		RoleID:       roleID,
	})
	if err != nil {
		return fmt.Errorf("create-admin: %w", err)
	}
	fmt.Fprintf(out, "admin %s ready (id %d)\n", email, id)
	return nil
}

// genSecrets prints two independent 64-byte hex secrets as env assignments.
func genSecrets(random io.Reader, out io.Writer) error {
	for _, name := range []string{"JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET"} {
		buf := make([]byte, 64)
		if _, err := io.ReadFull(random, buf); err != nil {
			return fmt.Errorf("gen-secrets: %w", err)
		}
		fmt.Fprintf(out, "%s=%s\n", name, hex.EncodeToString(buf))
	}
	return nil
}

func decodeToken(token string, out io.Writer) error {
	claims, err := auth.DecodeUnverified(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(claims)
}

var defaultRandom io.Reader = rand.Reader
