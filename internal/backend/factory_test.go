package backend

import (
	"context"
	"path/filepath"
	"testing"

	"hairfolio/internal/config"
	"hairfolio/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"nil config", nil, "", true},
		{"memory", &config.Config{DataBackend: "memory"}, MemoryBackend, false},
		{"sqlite", &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, SQLiteBackend, false},
		{"sheets is no longer a backend", &config.Config{DataBackend: "sheets"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Type != tt.want {
				t.Errorf("FromAppConfig() type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without path should fail")
	}
	if err := (Config{Type: "redis"}).Validate(); err == nil {
		t.Error("unknown type should fail")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory should validate: %v", err)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	mem, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if mem.Sync != nil {
		t.Error("memory backend should not track sync state")
	}
	if err := mem.Ping(ctx); err != nil {
		t.Errorf("memory Ping() = %v", err)
	}

	sq, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "b.db")})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	defer sq.Cleanup()
	if sq.Sync == nil {
		t.Error("sqlite backend should expose sync state")
	}
	if err := sq.Ledger.CreateTransaction(ctx, core.Transaction{ID: "t1", Date: "2024-01-01", Style: "Fade", Price: 10}); err != nil {
		t.Errorf("CreateTransaction() error = %v", err)
	}
	if err := sq.Ping(ctx); err != nil {
		t.Errorf("sqlite Ping() = %v", err)
	}
}

func TestCreatePublisherAndSheetsDisabled(t *testing.T) {
	f := NewFactory(nil)
	pub, err := f.CreatePublisher(&config.Config{})
	if pub != nil || err != nil {
		t.Errorf("CreatePublisher() = %v, %v; want nil, nil", pub, err)
	}
	cli, err := f.CreateSheets(context.Background(), &config.Config{})
	if cli != nil || err != nil {
		t.Errorf("CreateSheets() = %v, %v; want nil, nil", cli, err)
	}
}
