package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.StartingMana != 3 {
		t.Errorf("StartingMana = %d, want 3", cfg.StartingMana)
	}
	if cfg.StealCatchOdds != 0.70 {
		t.Errorf("StealCatchOdds = %v, want 0.70", cfg.StealCatchOdds)
	}
	if cfg.AudienceWindow != 2*time.Hour {
		t.Errorf("AudienceWindow = %v, want 2h", cfg.AudienceWindow)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Errorf("StoreBackend = %q, want sqlite", cfg.StoreBackend)
	}
	if err := cfg.ValidateStore(); err != nil {
		t.Errorf("default store invalid: %v", err)
	}
}

func TestLoadNormalizesNames(t *testing.T) {
	t.Setenv("TWITCH_CHANNEL", "#BeginBot")
	t.Setenv("TWITCH_BOT_USERNAME", "ThiefBot")
	t.Setenv("STREAM_LORDS", "@Uzi, future ,,")
	t.Setenv("STREAM_GODS", "beginbot")
	t.Setenv("IGNORED_USERS", "Nightbot,StreamElements")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TwitchChannel != "beginbot" {
		t.Errorf("TwitchChannel = %q", cfg.TwitchChannel)
	}
	if want := []string{"uzi", "future"}; !reflect.DeepEqual(cfg.StreamLords, want) {
		t.Errorf("StreamLords = %v, want %v", cfg.StreamLords, want)
	}
	if want := []string{"nightbot", "streamelements", "thiefbot"}; !reflect.DeepEqual(cfg.Ignored(), want) {
		t.Errorf("Ignored = %v, want %v", cfg.Ignored(), want)
	}
	if want := []string{"nightbot", "streamelements", "thiefbot", "beginbot"}; !reflect.DeepEqual(cfg.Invalid(), want) {
		t.Errorf("Invalid = %v, want %v", cfg.Invalid(), want)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("STARTING_MANA", "lots")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateChatReady(t *testing.T) {
	t.Setenv("TWITCH_CHANNEL", "chan")
	t.Setenv("TWITCH_BOT_USERNAME", "bot")
	t.Setenv("TWITCH_OAUTH_TOKEN", "oauth:token")
	cfg, _ := Load()
	if err := cfg.ValidateChatReady(); err != nil {
		t.Errorf("expected valid chat config, got %v", err)
	}
	cfg.TwitchChannel = ""
	if err := cfg.ValidateChatReady(); err == nil {
		t.Errorf("expected error when missing twitch envs")
	}
}

func TestValidateStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "memory", cfg: Config{StoreBackend: BackendMemory}},
		{name: "postgres without dsn", cfg: Config{StoreBackend: BackendPostgres}, wantErr: true},
		{name: "postgres", cfg: Config{StoreBackend: BackendPostgres, DBDsn: "postgres://x"}},
		{name: "redis", cfg: Config{StoreBackend: BackendRedis, RedisAddr: "localhost:6379"}},
		{name: "redis without addr", cfg: Config{StoreBackend: BackendRedis}, wantErr: true},
		{name: "unknown", cfg: Config{StoreBackend: "mongo"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateStore()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStore() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPolicy(t *testing.T) {
	t.Setenv("COUP_COST", "25")
	t.Setenv("REVOLUTION_POLICY", "strip")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	p, err := cfg.Policy()
	if err != nil {
		t.Fatal(err)
	}
	if p.CoupCost != 25 || p.StartingMana != 3 || p.MaxDrops != 50 {
		t.Errorf("policy = %+v", p)
	}
	if p.Revolution.Name() != "strip" {
		t.Errorf("Revolution = %q, want strip", p.Revolution.Name())
	}

	cfg.StealCatchOdds = 1.5
	if _, err := cfg.Policy(); err == nil {
		t.Error("expected odds out of range error")
	}
	cfg.StealCatchOdds = 0.5
	cfg.MaxDrops = 0
	if _, err := cfg.Policy(); err == nil {
		t.Error("expected max drops error")
	}
	cfg.MaxDrops = 50
	cfg.RevolutionPolicy = "anarchy"
	if _, err := cfg.Policy(); err == nil {
		t.Error("expected unknown revolution policy error")
	}
}

func TestCORSIsPermissive(t *testing.T) {
	tests := []struct {
		env, override string
		want          bool
	}{
		{"", "", true},
		{"development", "", true},
		{"production", "", false},
		{"production", "true", true},
		{"dev", "0", false},
	}
	for _, tt := range tests {
		cfg := Config{Env: tt.env, CORSPermissive: tt.override}
		if got := cfg.CORSIsPermissive(); got != tt.want {
			t.Errorf("ENV=%q CORS_PERMISSIVE=%q: got %v, want %v", tt.env, tt.override, got, tt.want)
		}
	}
}
