package utils

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Simple", "alice", false},
		{"WithDigits", "user01", false},
		{"WithUnderscore", "_svc", false},
		{"WithHyphen", "vpn-user", false},
		{"MaxLength", strings.Repeat("a", 32), false},
		{"Empty", "", true},
		{"TooLong", strings.Repeat("a", 33), true},
		{"Uppercase", "Alice", true},
		{"LeadingDigit", "1alice", true},
		{"ShellMeta", "alice;rm -rf /", true},
		{"Space", "al ice", true},
		{"Dollar", "al$ice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Simple", "p@ss", false},
		{"WithQuote", "it's", false},
		{"Empty", "", true},
		{"Newline", "a\nb", true},
		{"TooLong", strings.Repeat("x", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRanges(t *testing.T) {
	if err := ValidateDays(30); err != nil {
		t.Errorf("30 days should be valid: %v", err)
	}
	if err := ValidateDays(0); err == nil {
		t.Error("0 days should be rejected")
	}
	if err := ValidateDays(4000); err == nil {
		t.Error("4000 days should be rejected")
	}
	if err := ValidateLimit(2); err != nil {
		t.Errorf("limit 2 should be valid: %v", err)
	}
	if err := ValidateLimit(0); err == nil {
		t.Error("limit 0 should be rejected")
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "abc", "'abc'"},
		{"Space", "a b", "'a b'"},
		{"SingleQuote", "it's", `'it'\''s'`},
		{"Injection", "$(reboot)", "'$(reboot)'"},
		{"Backtick", "`id`", "'`id`'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShellQuote(tt.in); got != tt.want {
				t.Errorf("ShellQuote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
