package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(keys ...string) {
	for _, k := range keys {
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv("SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_NAME",
		"SESSION_TTL", "RECOVERY_SESSION_TTL", "OTP_TTL", "BCRYPT_COST",
		"RATE_LIMIT_ENABLED", "SECURITY_HEADERS_ENABLED")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBName != "aireap_auth" {
		t.Errorf("DBName = %q, want %q", cfg.DBName, "aireap_auth")
	}
	if cfg.SessionTTL != 24*time.Minute {
		t.Errorf("SessionTTL = %v, want %v", cfg.SessionTTL, 24*time.Minute)
	}
	if cfg.RecoverySessionTTL != 30*time.Minute {
		t.Errorf("RecoverySessionTTL = %v, want %v", cfg.RecoverySessionTTL, 30*time.Minute)
	}
	if cfg.OTPTTL != 5*time.Minute {
		t.Errorf("OTPTTL = %v, want %v", cfg.OTPTTL, 5*time.Minute)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limiting should be disabled by default")
	}
	if !cfg.SecurityHeaders.Enabled {
		t.Error("security headers should be enabled by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DB_HOST", "db.example.com")
	os.Setenv("SESSION_TTL", "1h")
	os.Setenv("OTP_TTL", "10m")
	defer clearEnv("SERVER_PORT", "DB_HOST", "SESSION_TTL", "OTP_TTL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.DBHost != "db.example.com" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "db.example.com")
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want %v", cfg.SessionTTL, time.Hour)
	}
	if cfg.OTPTTL != 10*time.Minute {
		t.Errorf("OTPTTL = %v, want %v", cfg.OTPTTL, 10*time.Minute)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Setenv("BCRYPT_COST", "99")
	defer os.Unsetenv("BCRYPT_COST")

	if _, err := Load(); err == nil {
		t.Error("Load should fail for out-of-range BCRYPT_COST")
	}
}

func TestHasGoogleOAuth(t *testing.T) {
	tests := []struct {
		name         string
		clientID     string
		clientSecret string
		expected     bool
	}{
		{"both set", "client-id", "client-secret", true},
		{"only client id", "client-id", "", false},
		{"only client secret", "", "client-secret", false},
		{"neither set", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				GoogleClientID:     tt.clientID,
				GoogleClientSecret: tt.clientSecret,
			}
			if cfg.HasGoogleOAuth() != tt.expected {
				t.Errorf("HasGoogleOAuth() = %v, want %v", cfg.HasGoogleOAuth(), tt.expected)
			}
		})
	}
}

func TestGetEnvInt_InvalidValue(t *testing.T) {
	os.Setenv("TEST_INT", "not-a-number")
	defer os.Unsetenv("TEST_INT")

	if got := getEnvInt("TEST_INT", 42); got != 42 {
		t.Errorf("getEnvInt should return default for invalid value, got %d", got)
	}
}

func TestGetEnvDuration_InvalidValue(t *testing.T) {
	os.Setenv("TEST_DURATION", "invalid")
	defer os.Unsetenv("TEST_DURATION")

	if got := getEnvDuration("TEST_DURATION", 5*time.Minute); got != 5*time.Minute {
		t.Errorf("getEnvDuration should return default for invalid value, got %v", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	if !getEnvBool("TEST_BOOL", false) {
		t.Error("getEnvBool should parse true")
	}
	if getEnvBool("TEST_BOOL_MISSING", false) {
		t.Error("getEnvBool should return default when unset")
	}
}
