package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/timeledger/timeledger/internal/auth"
	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/repository"
	"github.com/timeledger/timeledger/internal/store"
	"github.com/timeledger/timeledger/internal/store/sqlite"
)

type output struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	KeyID     string   `json:"key_id"`
	Key       string   `json:"key"`
	KeyPrefix string   `json:"key_prefix"`
	Scopes    []string `json:"scopes"`
}

// keyStore is the subset of either store driver the bootstrap needs.
type keyStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateAPIKey(ctx context.Context, key *model.APIKey) error
}

func main() {
	var (
		driver      = flag.String("driver", envOr("STORE_DRIVER", "postgres"), "Store driver: postgres or sqlite")
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		sqlitePath  = flag.String("sqlite-path", envOr("SQLITE_PATH", "timeledger.db"), "SQLite database file")
		userID      = flag.String("user-id", "system", "User ID to own the API key")
		email       = flag.String("email", "system@timeledger.local", "User email")
		name        = flag.String("name", "bootstrap", "API key name")
		scopesInput = flag.String("scopes", "admin", "Comma-separated scopes (read,write,admin)")
		keyEnv      = flag.String("env", envOr("API_KEY_ENV", auth.EnvLive), "Key environment: live or test")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	scopes, err := parseScopes(*scopesInput)
	if err != nil {
		fail(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var ks keyStore
	switch *driver {
	case "postgres":
		if *databaseURL == "" {
			fail("DATABASE_URL is required")
		}
		repo, err := repository.New(ctx, *databaseURL)
		if err != nil {
			fail("connect database: " + err.Error())
		}
		defer repo.Close()
		ks = repo
	case "sqlite":
		s, err := sqlite.New(*sqlitePath)
		if err != nil {
			fail("open sqlite: " + err.Error())
		}
		defer s.Close()
		ks = s
	default:
		fail("invalid driver; use postgres or sqlite")
	}

	if err := ensureUser(ctx, ks, *userID, *email); err != nil {
		fail(err.Error())
	}

	generated, err := auth.GenerateAPIKey(*keyEnv)
	if err != nil {
		fail("generate api key: " + err.Error())
	}

	apiKey := &model.APIKey{
		ID:            ulid.Make().String(),
		UserID:        *userID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		Scopes:        scopes,
		RateLimitTier: model.TierUnlimited,
		Name:          *name,
		CreatedAt:     time.Now().UTC(),
	}

	if err := ks.CreateAPIKey(ctx, apiKey); err != nil {
		fail("create api key: " + err.Error())
	}

	out := output{
		UserID:    *userID,
		Email:     *email,
		KeyID:     apiKey.ID,
		Key:       generated.Plaintext,
		KeyPrefix: apiKey.KeyPrefix,
		Scopes:    scopes,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Key)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format; use plain or json")
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseScopes(input string) ([]string, error) {
	parts := strings.Split(input, ",")
	scopes := make([]string, 0, len(parts))
	for _, part := range parts {
		scope := strings.TrimSpace(part)
		if scope == "" {
			continue
		}
		if !model.IsValidScope(scope) {
			return nil, fmt.Errorf("invalid scope: %s", scope)
		}
		scopes = append(scopes, scope)
	}
	if len(scopes) == 0 {
		scopes = []string{model.ScopeAdmin}
	}
	return scopes, nil
}

func ensureUser(ctx context.Context, ks keyStore, userID, email string) error {
	existing, err := ks.GetUserByEmail(ctx, email)
	if err == nil {
		if existing.ID != userID {
			return fmt.Errorf("email %s already used by user %s", email, existing.ID)
		}
		return nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return fmt.Errorf("look up user: %w", err)
	}

	user := &model.User{
		ID:        userID,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := ks.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
