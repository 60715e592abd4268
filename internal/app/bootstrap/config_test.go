package bootstrap

import (
	"testing"

	"github.com/dalemusser/waffle/config"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

const strongKey = "q7Vt2mX9pL4rN8sK1wB6yH3jD5fG0cZa"

func validAppConfig() AppConfig {
	return AppConfig{
		BackendURL:  "http://localhost:8000",
		SessionKey:  strongKey,
		CSRFKey:     strongKey + "x",
		SessionName: "stratastock-flash",
		PageSize:    10,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "valid", env: "dev", mutate: func(*AppConfig) {}},
		{name: "missing backend url", env: "dev", mutate: func(c *AppConfig) { c.BackendURL = "" }, wantErr: true},
		{name: "relative backend url", env: "dev", mutate: func(c *AppConfig) { c.BackendURL = "/api" }, wantErr: true},
		{name: "ftp backend url", env: "dev", mutate: func(c *AppConfig) { c.BackendURL = "ftp://host" }, wantErr: true},
		{name: "bad token url", env: "dev", mutate: func(c *AppConfig) { c.BackendTokenURL = "not a url" }, wantErr: true},
		{name: "token url without client id", env: "dev", mutate: func(c *AppConfig) {
			c.BackendTokenURL = "https://auth.example.com/token"
		}, wantErr: true},
		{name: "token url with client id", env: "dev", mutate: func(c *AppConfig) {
			c.BackendTokenURL = "https://auth.example.com/token"
			c.BackendClientID = "stratastock"
		}},
		{name: "dev keys allowed in dev", env: "dev", mutate: func(c *AppConfig) {
			c.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"
		}},
		{name: "dev keys rejected in prod", env: "prod", mutate: func(c *AppConfig) {
			c.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"
		}, wantErr: true},
		{name: "short csrf key rejected in prod", env: "prod", mutate: func(c *AppConfig) { c.CSRFKey = "short" }, wantErr: true},
		{name: "strong keys in prod", env: "prod", mutate: func(*AppConfig) {}},
		{name: "invalid mongo uri", env: "dev", mutate: func(c *AppConfig) { c.MongoURI = "postgres://db" }, wantErr: true},
		{name: "mongo uri", env: "dev", mutate: func(c *AppConfig) { c.MongoURI = "mongodb://localhost:27017" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"inventory.read", []string{"inventory.read"}},
		{" inventory.read , forecast.read ,,", []string{"inventory.read", "forecast.read"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitList(tt.in)); diff != "" {
			t.Errorf("splitList(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestCallLogEnabled(t *testing.T) {
	cfg := validAppConfig()
	if cfg.CallLogEnabled() {
		t.Error("expected call log disabled without mongo_uri")
	}
	cfg.MongoURI = "mongodb://localhost:27017"
	if !cfg.CallLogEnabled() {
		t.Error("expected call log enabled with mongo_uri")
	}
}
