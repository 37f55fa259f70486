package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/submission-service/internal/app"
	"github.com/noah-isme/submission-service/internal/auth"
	"github.com/noah-isme/submission-service/internal/platform/db"
	"github.com/noah-isme/submission-service/internal/roles"
	"github.com/noah-isme/submission-service/internal/users"
	"github.com/noah-isme/submission-service/jobs"
)

const usage = `usage: authctl <command> [flags]

commands:
  seed            upsert roles and the demo accounts
  create-admin    create or reset an admin (-username -email -password)
  gen-secrets     print fresh JWT secrets
  decode-token    print the claims of a token without verifying it
  sweep-now       enqueue an immediate refresh-token sweep
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "gen-secrets":
		err = genSecrets(defaultRandom, os.Stdout)
	case "decode-token":
		if len(args) != 1 {
			log.Fatal("decode-token: expected exactly one token argument")
		}
		err = decodeToken(args[0], os.Stdout)
	case "seed":
		err = withStore(ctx, func(store seedStore, hasher *auth.PasswordHasher) error {
			return seed(ctx, store, hasher, os.Stdout)
		})
	case "create-admin":
		fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
		username := fs.String("username", "", "admin username")
		email := fs.String("email", "", "admin email")
		password := fs.String("password", "", "admin password")
		_ = fs.Parse(args)
		err = withStore(ctx, func(store seedStore, hasher *auth.PasswordHasher) error {
			return createAdmin(ctx, store, hasher, *username, *email, *password, os.Stdout)
		})
	case "sweep-now":
		err = sweepNow(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func loadConfig() (*app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func withStore(ctx context.Context, fn func(seedStore, *auth.PasswordHasher) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	store := pgSeedStore{roles: roles.NewRepository(pool), users: users.NewRepository(pool)}
	return fn(store, auth.NewPasswordHasher(cfg.BcryptCost))
}

func sweepNow(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := jobs.NewClient(cfg.RedisOptions().AsynqOpt())
	defer client.Close()
	info, err := client.EnqueueTokenSweep(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("enqueued %s (%s)\n", info.ID, info.Queue)
	return nil
}
