package utils

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// GenerateUUID 生成代理客户端标识
func GenerateUUID() string {
	return uuid.New().String()
}

// GeneratePassword 生成随机密码
func GeneratePassword(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	for i := range b {
		b[i] = charset[b[i]%byte(len(charset))]
	}
	return string(b)
}
