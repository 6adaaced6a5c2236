// Package panel is the thin web boundary of the control panel: admin
// login, JSON routes for the account operations, and the configuration
// that wires the remote transport together.
package panel

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/xvp-go/pkg/remote"
)

// SSHConfig holds the credentials for the managed remote host.
type SSHConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config holds runtime settings for the panel. Values are layered:
// defaults, then an optional YAML file, then environment variables.
type Config struct {
	ListenAddr    string        `yaml:"listen_addr"`
	AdminUser     string        `yaml:"admin_user"`
	AdminPassword string        `yaml:"admin_password"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`

	SSH SSHConfig `yaml:"ssh"`

	ProxyConfigPath string `yaml:"proxy_config_path"`
	AccessLogPath   string `yaml:"access_log_path"`
	TargetProtocol  string `yaml:"target_protocol"`
}

// LoadDefaults populates development defaults. Credentials have no
// default on purpose: Validate refuses to serve without them.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.SessionTTL = time.Hour
	c.SSH.Port = 22
	c.SSH.TimeoutSeconds = int(remote.DefaultTimeout / time.Second)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString(&c.ListenAddr, "XVP_LISTEN")
	setString(&c.AdminUser, "ADMIN_USER")
	setString(&c.AdminPassword, "ADMIN_PASSWORD")
	setString(&c.SessionSecret, "XVP_SESSION_SECRET")
	setString(&c.SSH.Host, "SSH_IP")
	setString(&c.SSH.User, "SSH_USER")
	setString(&c.SSH.Password, "SSH_PASSWORD")
	setString(&c.ProxyConfigPath, "XVP_PROXY_CONFIG")
	setString(&c.AccessLogPath, "XVP_ACCESS_LOG")
	setString(&c.TargetProtocol, "XVP_PROTOCOL")

	if v, ok := os.LookupEnv("SSH_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.SSH.Port = port
		}
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying an
// optional YAML file and finally the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()
	return cfg, nil
}

// Validate checks that everything serve needs is present.
func (c *Config) Validate() error {
	if c.SSH.Host == "" {
		return errors.New("remote host is not configured (ssh.host / SSH_IP)")
	}
	if c.SSH.User == "" || c.SSH.Password == "" {
		return errors.New("remote credentials are not configured (ssh.user, ssh.password / SSH_USER, SSH_PASSWORD)")
	}
	if c.AdminUser == "" || c.AdminPassword == "" {
		return errors.New("admin credentials are not configured (admin_user, admin_password / ADMIN_USER, ADMIN_PASSWORD)")
	}
	if c.SessionSecret == "" {
		return errors.New("session secret is not configured (session_secret / XVP_SESSION_SECRET)")
	}
	return nil
}

// Remote converts the SSH section into a transport config.
func (c *Config) Remote() remote.Config {
	return remote.Config{
		Host:     c.SSH.Host,
		Port:     c.SSH.Port,
		User:     c.SSH.User,
		Password: c.SSH.Password,
		Timeout:  time.Duration(c.SSH.TimeoutSeconds) * time.Second,
	}
}
