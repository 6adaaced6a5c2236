package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType 错误类型
type ErrorType int

const (
	// 远程传输相关错误
	ErrConnection ErrorType = iota
	ErrCommand
	ErrRemoteNotFound

	// 代理配置文档相关错误
	ErrConfigRead
	ErrConfigWrite
	ErrConfigShape
	ErrConfigFormat
	ErrConflict

	// 账号相关错误
	ErrDuplicateAccount
	ErrInvalidExpiration
	ErrInvalidInput
)

// XVPError 自定义错误类型
type XVPError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *XVPError) Error() string {
	return e.Message
}

func (e *XVPError) Unwrap() error {
	return e.Cause
}

// GetSuggestions 获取错误修复建议
func (e *XVPError) GetSuggestions() []string {
	switch e.Type {
	case ErrConnection:
		return []string{
			"检查 SSH_IP / SSH_PORT / SSH_USER / SSH_PASSWORD 环境变量",
			"确认远程主机可达: 'ping <host>'",
			"确认远程 sshd 正在运行并允许密码登录",
		}
	case ErrCommand:
		return []string{
			"查看错误信息中附带的远程命令输出",
			"在远程主机手动执行该命令定位问题",
		}
	case ErrRemoteNotFound:
		return []string{
			"运行 'xvp list' 查看已有账号",
			"确认用户名拼写是否正确",
		}
	case ErrConfigRead, ErrConfigWrite:
		return []string{
			"确认远程配置文件路径是否正确 (默认 /usr/local/etc/xray/config.json)",
			"检查远程用户对该文件的读写权限",
		}
	case ErrConfigShape:
		return []string{
			"确认 Xray 配置中存在目标协议的 inbound 且带有 clients 列表",
			"在远程主机运行 'xray run -test' 验证配置",
		}
	case ErrDuplicateAccount:
		return []string{
			"使用其他用户名，或先运行 'xvp remove <user>' 删除旧账号",
		}
	case ErrInvalidInput:
		return []string{
			"用户名仅允许小写字母、数字、下划线和连字符",
		}
	default:
		return nil
	}
}

// GetFormattedError 获取格式化的错误信息
func (e *XVPError) GetFormattedError() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("❌ %s\n", e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("原因: %s\n", e.Cause.Error()))
	}

	if suggestions := e.GetSuggestions(); len(suggestions) > 0 {
		sb.WriteString("\n💡 修复建议:\n")
		for i, suggestion := range suggestions {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion))
		}
	}

	if len(e.Context) > 0 {
		sb.WriteString("\n📋 详细信息:\n")
		for key, value := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, value))
		}
	}

	return sb.String()
}

// 便捷的错误创建函数

func NewConnectionError(host string, cause error) *XVPError {
	return &XVPError{
		Type:    ErrConnection,
		Message: fmt.Sprintf("cannot reach remote host %s", host),
		Cause:   cause,
		Context: map[string]interface{}{
			"host": host,
		},
	}
}

func NewCommandError(output string, cause error) *XVPError {
	return &XVPError{
		Type:    ErrCommand,
		Message: fmt.Sprintf("remote command failed: %s", strings.TrimSpace(output)),
		Cause:   cause,
		Context: map[string]interface{}{
			"output": output,
		},
	}
}

func NewRemoteNotFoundError(username string) *XVPError {
	return &XVPError{
		Type:    ErrRemoteNotFound,
		Message: fmt.Sprintf("account %q does not exist on the remote host", username),
		Context: map[string]interface{}{
			"username": username,
		},
	}
}

func NewConfigReadError(path string, cause error) *XVPError {
	return &XVPError{
		Type:    ErrConfigRead,
		Message: fmt.Sprintf("cannot read proxy configuration %s", path),
		Cause:   cause,
		Context: map[string]interface{}{
			"path": path,
		},
	}
}

func NewConfigWriteError(path string, cause error) *XVPError {
	return &XVPError{
		Type:    ErrConfigWrite,
		Message: fmt.Sprintf("cannot write proxy configuration %s", path),
		Cause:   cause,
		Context: map[string]interface{}{
			"path": path,
		},
	}
}

func NewConfigShapeError(protocol string) *XVPError {
	return &XVPError{
		Type:    ErrConfigShape,
		Message: fmt.Sprintf("no %s inbound with a client list found in the proxy configuration", protocol),
		Context: map[string]interface{}{
			"protocol": protocol,
		},
	}
}

func NewConfigFormatError(cause error) *XVPError {
	return &XVPError{
		Type:    ErrConfigFormat,
		Message: "proxy configuration is no longer serializable after mutation, write refused",
		Cause:   cause,
	}
}

func NewConflictError(path string, cause error) *XVPError {
	return &XVPError{
		Type:    ErrConflict,
		Message: fmt.Sprintf("proxy configuration %s changed since it was read", path),
		Cause:   cause,
		Context: map[string]interface{}{
			"path": path,
		},
	}
}

func NewDuplicateAccountError(username string) *XVPError {
	return &XVPError{
		Type:    ErrDuplicateAccount,
		Message: fmt.Sprintf("account %q already exists in the proxy configuration, operation aborted", username),
		Context: map[string]interface{}{
			"username": username,
		},
	}
}

func NewInvalidExpirationError(text string) *XVPError {
	return &XVPError{
		Type:    ErrInvalidExpiration,
		Message: fmt.Sprintf("remote host returned an unparseable expiration date: %q", text),
		Context: map[string]interface{}{
			"text": text,
		},
	}
}

func NewInvalidInputError(field, reason string) *XVPError {
	return &XVPError{
		Type:    ErrInvalidInput,
		Message: fmt.Sprintf("invalid %s: %s", field, reason),
		Context: map[string]interface{}{
			"field": field,
		},
	}
}

// 辅助函数：检查错误类型

func IsXVPError(err error) bool {
	var xe *XVPError
	return errors.As(err, &xe)
}

func IsType(err error, t ErrorType) bool {
	var xe *XVPError
	if errors.As(err, &xe) {
		return xe.Type == t
	}
	return false
}

func IsDuplicateAccount(err error) bool { return IsType(err, ErrDuplicateAccount) }
func IsRemoteNotFound(err error) bool   { return IsType(err, ErrRemoteNotFound) }
func IsConnection(err error) bool       { return IsType(err, ErrConnection) }
func IsInvalidInput(err error) bool     { return IsType(err, ErrInvalidInput) }
