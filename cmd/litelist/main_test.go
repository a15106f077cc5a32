package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/qcom/litelist/internal/config"
	"github.com/qcom/litelist/internal/models"
	"github.com/qcom/litelist/internal/repository"
	"github.com/qcom/litelist/internal/session"
	"github.com/qcom/litelist/internal/testutil"
)

// fakeAPI serves the auth endpoints for user ada with password "secret".
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	token := testutil.TokenExpiringIn(t, "ada", time.Now(), time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"bad credentials"}`))
			return
		}
		json.NewEncoder(w).Encode(models.TokenResponse{Token: token})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(models.User{Username: "ada", Email: "ada@example.com"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"litelist"}, args...))
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv := fakeAPI(t)
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("LITELIST_API_URL", srv.URL)
	t.Setenv("LITELIST_STORE_PATH", filepath.Join(dir, "credentials.db"))
	t.Setenv("LITELIST_LOG_LEVEL", "error")

	if _, err := runApp(t, "login", "--password", "wrong", "ada"); err == nil {
		t.Fatal("login with wrong password succeeded")
	}
	if _, err := runApp(t, "whoami"); err == nil {
		t.Fatal("whoami succeeded before login")
	}

	out, err := runApp(t, "login", "--password", "secret", "ada")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Logged in as ada") {
		t.Errorf("login output = %q", out)
	}

	out, err = runApp(t, "--output", "json", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	var user models.User
	if err := json.Unmarshal([]byte(out), &user); err != nil {
		t.Fatalf("decode whoami output %q: %v", out, err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("whoami user = %+v", user)
	}

	out, err = runApp(t, "-o", "yaml", "whoami")
	if err != nil {
		t.Fatalf("whoami yaml: %v", err)
	}
	if !strings.Contains(out, "username: ada") {
		t.Errorf("whoami yaml output = %q", out)
	}

	if _, err := runApp(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := runApp(t, "whoami"); err == nil {
		t.Fatal("whoami succeeded after logout")
	}
}

func TestOpenStore(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		sealed bool
	}{
		{"memory", func(c *config.Config) { c.Store.Backend = config.BackendMemory }, false},
		{"sqlite", func(c *config.Config) {
			c.Store.Path = filepath.Join(t.TempDir(), "nested", "credentials.db")
		}, false},
		{"sealed sqlite", func(c *config.Config) {
			c.Store.Path = filepath.Join(t.TempDir(), "credentials.db")
			c.Store.SealSecret = "0123456789abcdef0123"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			defer store.Close()

			if _, ok := store.(*repository.SealedStore); ok != tt.sealed {
				t.Errorf("sealed = %v, want %v", ok, tt.sealed)
			}
			if err := store.Set(ctx, session.TokenKey, "tok"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got, err := store.Get(ctx, session.TokenKey); err != nil || got != "tok" {
				t.Errorf("Get = %q, %v", got, err)
			}
		})
	}

	cfg := config.Default()
	cfg.Store.Backend = "etcd"
	if _, err := openStore(ctx, cfg, logger); err == nil {
		t.Error("openStore accepted an unknown backend")
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "warn", Format: "text"}, true, false)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want JSON for the gateway", logger.Formatter)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %s, want warn", logger.GetLevel())
	}

	logger, err = newLogger(config.LogConfig{Level: "warn", Format: "text"}, false, true)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("verbose level = %s, want debug", logger.GetLevel())
	}

	if _, err := newLogger(config.LogConfig{Level: "loud"}, false, false); err == nil {
		t.Error("newLogger accepted an invalid level")
	}
}
