package utils

import (
	"regexp"
	"strings"
)

// 用户名必须是合法的 POSIX 登录名，同时也是注入防护的第一道关卡：
// 允许的字符集内不存在任何 shell 元字符。
var usernameRe = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

func ValidateUsername(username string) error {
	if username == "" {
		return NewInvalidInputError("username", "must not be empty")
	}
	if !usernameRe.MatchString(username) {
		return NewInvalidInputError("username", "must match ^[a-z_][a-z0-9_-]{0,31}$")
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return NewInvalidInputError("password", "must not be empty")
	}
	if len(password) > 128 {
		return NewInvalidInputError("password", "must be at most 128 characters")
	}
	for _, r := range password {
		if r < 0x20 || r == 0x7f {
			return NewInvalidInputError("password", "must not contain control characters")
		}
	}
	return nil
}

func ValidateDays(days int) error {
	if days < 1 || days > 3650 {
		return NewInvalidInputError("days", "must be between 1 and 3650")
	}
	return nil
}

func ValidateLimit(limit int) error {
	if limit < 1 || limit > 100 {
		return NewInvalidInputError("limit", "must be between 1 and 100")
	}
	return nil
}

// ShellQuote 将任意字符串包装为单引号字面量，供拼接进远程脚本。
// 单引号内除 ' 本身外没有任何特殊字符。
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
