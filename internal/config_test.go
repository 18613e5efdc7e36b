package internal

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/itam/internal/itamservice"
	"github.com/starford/itam/internal/store"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	if !cfg.Auth.AuthEnabled() {
		t.Error("auth should default to token mode")
	}
	if cfg.List.PageSize != 5 {
		t.Errorf("page size = %d", cfg.List.PageSize)
	}
}

func TestAuthConfig_EmptyModeDefaultsToken(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode: %v", err)
	}
	if cfg.Mode != AuthModeToken {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeToken)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: AuthModeDisabled}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestAuthConfig_ShortTTL(t *testing.T) {
	cfg := AuthConfig{Mode: AuthModeToken, TokenTTL: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("sub-minute ttl should fail")
	}
}

func TestAuthConfig_BootstrapPassword(t *testing.T) {
	cfg := AuthConfig{Bootstrap: BootstrapConfig{Username: "admin", Password: "x"}}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "bootstrap password") {
		t.Errorf("err = %v", err)
	}
}

func TestInventoryPathRequiredWhenEnabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Inventory = InventoryConfig{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Fatal("enabled inventory without path should fail")
	}
	cfg.Inventory.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled inventory: %v", err)
	}
}

func TestHTTPConfig(t *testing.T) {
	cases := []struct {
		base, mount string
		valid       bool
	}{
		{"", "/", true},
		{"/api", "/api", true},
		{"/api/", "/api", true},
		{"api", "api", false},
	}
	for _, tc := range cases {
		c := HTTPConfig{Port: 8000, BasePath: tc.base}
		if err := c.Validate(); (err == nil) != tc.valid {
			t.Errorf("%q: err = %v", tc.base, err)
		}
		if tc.valid && c.MountPath() != tc.mount {
			t.Errorf("%q: mount = %q, want %q", tc.base, c.MountPath(), tc.mount)
		}
	}
}

func TestFullConfig_ListValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.List.PageSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch list error")
	}
}

func TestAddUser(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "itam.db")

	var out bytes.Buffer
	err := AddUser(context.Background(), NewUser{Username: "root", Password: "rootpw", Admin: true}, &out, WithConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `created user "root"`) {
		t.Errorf("output = %q", out.String())
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	svc := itamservice.NewService(db, time.Hour)
	token, err := svc.Login(context.Background(), "root", "rootpw")
	if err != nil {
		t.Fatal(err)
	}
	id, err := svc.Authenticate(context.Background(), token)
	if err != nil || !id.IsAdmin() {
		t.Errorf("identity = %+v, %v", id, err)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("Run without config should fail")
	}
}
