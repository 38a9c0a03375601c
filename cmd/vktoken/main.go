// Package main provides the entry point for the vktoken CLI. It acquires VK
// access tokens for the configured accounts by driving VK's implicit-grant
// pages without a browser, persists them through the configured store, and
// can exercise a token with a test API call.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vkdirty/vktoken/internal/api"
	"github.com/vkdirty/vktoken/internal/auth/vk"
	"github.com/vkdirty/vktoken/internal/config"
	"github.com/vkdirty/vktoken/internal/logging"
	"github.com/vkdirty/vktoken/internal/store"
)

var Version = "dev"

func init() {
	logging.SetupBaseLogger()
}

func main() {
	// A .env alongside the binary may carry credentials referenced by the config.
	_ = godotenv.Load()

	var configPath string
	var accountLogin string
	var callMethod string
	var callParams string

	flag.StringVar(&configPath, "config", "config.yaml", "Configuration file path")
	flag.StringVar(&accountLogin, "account", "", "Only run the flow for the account with this login")
	flag.StringVar(&callMethod, "call", "", "After authorization, call this VK API method with the token")
	flag.StringVar(&callParams, "params", "", "Comma-separated k=v parameters for -call")
	flag.Parse()

	fmt.Printf("vktoken %s\n", Version)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logging.ConfigureLogOutput(cfg)
	defer logging.CloseLogOutput()

	accounts := cfg.Accounts
	if accountLogin != "" {
		accounts = nil
		for _, acc := range cfg.Accounts {
			if acc.Login == accountLogin {
				accounts = append(accounts, acc)
			}
		}
		if len(accounts) == 0 {
			log.Fatalf("no account with login %q in %s", accountLogin, configPath)
		}
	}
	if len(accounts) == 0 {
		log.Fatalf("no accounts configured in %s", configPath)
	}

	authenticator := vk.NewVKAuth(cfg)
	ctx := context.Background()

	// Each account runs its own flow with its own session; only the token
	// store may be shared, and every store serializes its own writes.
	g, gctx := errgroup.WithContext(ctx)
	for _, acc := range accounts {
		acc := acc
		g.Go(func() error {
			tokenStore, closeStore, errStore := buildStore(gctx, cfg, acc.Login)
			if errStore != nil {
				return fmt.Errorf("%s: %w", acc.Login, errStore)
			}
			defer closeStore()

			result, errAuth := authenticator.Authorize(gctx, vk.AuthRequest{
				ClientID: acc.ClientID,
				Login:    acc.Login,
				Password: acc.Password,
				Phone:    acc.Phone,
				Scope:    acc.Scope,
				Store:    tokenStore,
			})
			if errAuth != nil {
				return fmt.Errorf("%s: %w", acc.Login, errAuth)
			}

			log.Infof("%s: access token acquired (%s...)", acc.Login, tokenPreview(result.AccessToken))
			if callMethod != "" {
				return smokeCall(gctx, cfg, acc.Login, result.AccessToken, callMethod, callParams)
			}
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		log.Fatalf("authorization failed: %v", err)
	}
}

// buildStore constructs the token store selected in the configuration, keyed
// per account so concurrent flows never collide.
func buildStore(ctx context.Context, cfg *config.Config, login string) (store.TokenStore, func(), error) {
	noop := func() {}
	switch strings.ToLower(cfg.Store.Type) {
	case "", "file":
		path := filepath.Join(cfg.AuthDir, fmt.Sprintf("vk-%s.json", sanitizeLogin(login)))
		return store.NewFileStore(path), noop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		ttl := time.Duration(cfg.Store.RedisTTLSeconds) * time.Second
		closeFn := func() { _ = client.Close() }
		return store.NewRedisStore(client, "vk:token:"+login, ttl), closeFn, nil
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.Store.PostgresDSN, login)
		if err != nil {
			return nil, noop, err
		}
		return pg, func() { _ = pg.Close() }, nil
	case "none":
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

// smokeCall exercises a freshly acquired token against the VK API.
func smokeCall(ctx context.Context, cfg *config.Config, login, token, method, rawParams string) error {
	params := map[string]string{}
	for _, pair := range strings.Split(rawParams, ",") {
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("%s: malformed -params entry %q", login, pair)
		}
		params[k] = v
	}

	response, err := api.NewClient(cfg, token).Call(ctx, method, params)
	if err != nil {
		return fmt.Errorf("%s: %w", login, err)
	}
	fmt.Fprintf(os.Stdout, "%s %s: %s\n", login, method, response.Raw)
	return nil
}

func tokenPreview(token string) string {
	if len(token) <= 4 {
		return token
	}
	return token[:4]
}

// sanitizeLogin keeps token file names filesystem-safe.
func sanitizeLogin(login string) string {
	var b strings.Builder
	for _, r := range login {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '@' || r == '.' || r == '-' || r == '+' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
