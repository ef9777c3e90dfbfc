package dbconfig

import "testing"

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "url wins",
			cfg:  Config{URL: "postgres://u@db/x", Host: "other"},
			want: "postgres://u@db/x",
		},
		{
			name: "fields",
			cfg:  Config{Host: "db", Port: 5433, User: "pong", Password: "p@ss", Database: "duelpong", SSLMode: "disable"},
			want: "postgres://pong:p%40ss@db:5433/duelpong?sslmode=disable",
		},
		{
			name: "default host",
			cfg:  Config{Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "require"},
			want: "postgres://u:p@localhost:5432/d?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "not-a-port")

	cfg := NewConfigFromEnv()
	if cfg.Enabled() {
		t.Errorf("Enabled() = true with no database configured")
	}
	if cfg.Port != 5432 || cfg.Database != "duelpong" {
		t.Errorf("defaults = %+v", cfg)
	}

	t.Setenv("DB_HOST", "db")
	if !NewConfigFromEnv().Enabled() {
		t.Errorf("Enabled() = false with DB_HOST set")
	}
}
