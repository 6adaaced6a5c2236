package panel

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if cfg.ListenAddr != ":8080" {
		t.Errorf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("unexpected session TTL %v", cfg.SessionTTL)
	}
	if cfg.SSH.Port != 22 {
		t.Errorf("unexpected SSH port %d", cfg.SSH.Port)
	}
}

func TestLoadConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xvp.yaml")
	content := `
listen_addr: ":9090"
admin_user: admin@example.com
ssh:
  host: 203.0.113.7
  user: root
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("file value not applied: %q", cfg.ListenAddr)
	}
	if cfg.SSH.Host != "203.0.113.7" || cfg.SSH.User != "root" {
		t.Errorf("nested SSH values not applied: %+v", cfg.SSH)
	}
	// 文件没写的字段保持默认
	if cfg.SSH.Port != 22 {
		t.Errorf("default port lost: %d", cfg.SSH.Port)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xvp.yaml")
	if err := os.WriteFile(path, []byte("ssh:\n  host: from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SSH_IP", "from-env")
	t.Setenv("SSH_PORT", "2222")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.SSH.Host != "from-env" {
		t.Errorf("env should win over file, got %q", cfg.SSH.Host)
	}
	if cfg.SSH.Port != 2222 {
		t.Errorf("SSH_PORT not applied: %d", cfg.SSH.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/xvp.yaml"); err == nil {
		t.Error("missing explicit config file should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.LoadDefaults()
		cfg.SSH.Host = "203.0.113.7"
		cfg.SSH.User = "root"
		cfg.SSH.Password = "pw"
		cfg.AdminUser = "admin"
		cfg.AdminPassword = "pw"
		cfg.SessionSecret = "secret"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("complete config should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NoHost", func(c *Config) { c.SSH.Host = "" }},
		{"NoSSHUser", func(c *Config) { c.SSH.User = "" }},
		{"NoAdmin", func(c *Config) { c.AdminUser = "" }},
		{"NoSecret", func(c *Config) { c.SessionSecret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}

func TestRemote(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.SSH.Host = "203.0.113.7"
	cfg.SSH.TimeoutSeconds = 10

	rc := cfg.Remote()
	if rc.Host != "203.0.113.7" || rc.Port != 22 {
		t.Errorf("unexpected remote config: %+v", rc)
	}
	if rc.Timeout != 10*time.Second {
		t.Errorf("timeout not converted: %v", rc.Timeout)
	}
}
