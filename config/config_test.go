package config

import (
	"os"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantAddr string
		wantDB   string
		admin    string
	}{
		{
			name:     "json",
			file:     "config.json",
			content:  `{"bot_token":"t","server_address":"http://files.local:9000/","admins":{"alice":true}}`,
			wantAddr: "http://files.local:9000",
			wantDB:   defaultMongoDatabase,
			admin:    "alice",
		},
		{
			name:     "yaml",
			file:     "config.yaml",
			content:  "bot_token: t\nmongo_database: archive\nadmins:\n  bob: true\n",
			wantAddr: defaultServerAddress,
			wantDB:   "archive",
			admin:    "bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if cfg.BotToken != "t" {
				t.Errorf("BotToken = %q, want %q", cfg.BotToken, "t")
			}
			if cfg.ServerAddress != tt.wantAddr {
				t.Errorf("ServerAddress = %q, want %q", cfg.ServerAddress, tt.wantAddr)
			}
			if cfg.MongoDatabase != tt.wantDB {
				t.Errorf("MongoDatabase = %q, want %q", cfg.MongoDatabase, tt.wantDB)
			}
			if !cfg.IsAdmin(tt.admin) {
				t.Errorf("IsAdmin(%q) = false, want true", tt.admin)
			}
			if cfg.Sheets.SheetName != defaultSheetName {
				t.Errorf("SheetName = %q, want %q", cfg.Sheets.SheetName, defaultSheetName)
			}
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadConfig(writeFile(t, "bad.json", "{")); err == nil {
		t.Error("expected error for malformed json")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := &Config{BotToken: "t", Admins: map[string]bool{}}
	cfg.SetAdmin("carol", true)
	cfg.ObjectStorage = ObjectStorageConfig{Endpoint: "minio:9000", Bucket: "downloads"}

	for _, name := range []string{"out.json", "out.yml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := SaveConfig(cfg, path); err != nil {
			t.Fatalf("SaveConfig(%s): %v", name, err)
		}
		got, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%s): %v", name, err)
		}
		if !got.IsAdmin("carol") {
			t.Errorf("%s: admin lost", name)
		}
		if !got.ObjectStorageEnabled() {
			t.Errorf("%s: object storage lost", name)
		}
		if got.SheetsEnabled() {
			t.Errorf("%s: sheets unexpectedly enabled", name)
		}
	}
}

func TestAdminsConcurrentAccess(t *testing.T) {
	cfg := &Config{Admins: map[string]bool{}}
	dir := t.TempDir()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("user%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg.SetAdmin(name, true)
			_ = cfg.IsAdmin(name)
			if err := SaveConfig(cfg, filepath.Join(dir, name+".json")); err != nil {
				t.Errorf("SaveConfig: %v", err)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("user%d", i)
		if !cfg.IsAdmin(name) {
			t.Errorf("%s not admin in memory", name)
		}
		got, err := LoadConfig(filepath.Join(dir, name+".json"))
		if err != nil {
			t.Fatalf("LoadConfig(%s): %v", name, err)
		}
		if !got.IsAdmin(name) {
			t.Errorf("%s missing from its own save", name)
		}
	}
}
