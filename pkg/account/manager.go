// Package account coordinates the lifecycle of a VPN account across the
// two remote stores it lives in: the Linux user database (reached through
// shell commands) and the Xray client list (reached through the remote
// configuration document). The pair has no transaction support; the
// coordinator keeps them consistent through ordering, duplicate checks
// and an in-process lock around every document read-modify-write.
package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/xvp-go/pkg/remote"
	"github.com/yourusername/xvp-go/pkg/utils"
	"github.com/yourusername/xvp-go/pkg/xray"
)

// Account 是一次创建操作返回给调用方的完整凭据
type Account struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Days      int    `json:"days"`
	Limit     int    `json:"limit"`
	ProxyID   string `json:"uuid"`
	ExpiresAt string `json:"expDate"`
}

// Credential 是账号列表中的一项
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Info 汇总一个账号在两个存储中的状态。OS 账号已删除但代理身份
// 仍在时（删除流程中途崩溃留下的孤儿），Exists 为 false 而
// ProxyID 非空。
type Info struct {
	Username  string     `json:"username"`
	Exists    bool       `json:"exists"`
	ExpiresAt *time.Time `json:"expDate"`
	ProxyID   string     `json:"uuid,omitempty"`
}

// Expired 报告账号在 now 时刻是否已过期；永不过期返回 false
func (i Info) Expired(now time.Time) bool {
	if !i.Exists || i.ExpiresAt == nil {
		return false
	}
	return i.ExpiresAt.Before(now)
}

// chage -l 输出的日期格式，以及面板自己写出的格式
var expirationLayouts = []string{"Jan 02, 2006", "Jan 2, 2006", "2006-01-02"}

// Manager 是账号生命周期协调者，也是两个远程存储唯一的写入方。
//
// mu 串行化代理配置文档的读改写序列：同进程内两个并发 Create
// 不可能都通过重复检查。跨进程的竞争（两个面板实例）不在此锁的
// 保护范围内，文档写入仍是 last-writer-wins。
type Manager struct {
	runner   remote.Runner
	store    *xray.Store
	service  *ServiceManager
	protocol string

	mu  sync.Mutex
	now func() time.Time
}

func NewManager(runner remote.Runner, store *xray.Store, protocol string) *Manager {
	if protocol == "" {
		protocol = xray.DefaultProtocol
	}
	return &Manager{
		runner:   runner,
		store:    store,
		service:  NewServiceManager(runner),
		protocol: protocol,
		now:      time.Now,
	}
}

// Create 创建一个新的 VPN 账号。
//
// 顺序是刻意的：先提交代理配置文档，再并发执行 OS 账号创建、
// daemon-reload 和服务重启。文档写入之后的失败不回滚——错误原样
// 上抛，此时文档里已有一条没有对应 OS 账号的客户端记录，可由
// Delete 清理。
func (m *Manager) Create(ctx context.Context, username, password string, days, limit int) (*Account, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := utils.ValidateDays(days); err != nil {
		return nil, err
	}
	if err := utils.ValidateLimit(limit); err != nil {
		return nil, err
	}

	identity := utils.GenerateUUID()
	expiresAt := m.now().AddDate(0, 0, days).Format("2006-01-02")

	if err := m.addClient(ctx, username, identity); err != nil {
		return nil, err
	}

	// 三个远程命令互不依赖，并发执行；任何一个失败都不回滚其余
	// 两个，第一个错误上抛。
	var g errgroup.Group
	g.Go(func() error {
		return m.runChecked(ctx, createUserScript(username, password, days, limit))
	})
	g.Go(func() error { return m.service.DaemonReload(ctx) })
	g.Go(func() error { return m.service.Restart(ctx) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 状态查询只为日志，结果不影响成败
	if state, err := m.service.Status(ctx); err != nil {
		utils.Warning("cannot query %s status after restart: %v", ServiceName, err)
	} else {
		utils.Info("%s status after restart: %s", ServiceName, state)
	}

	utils.Info("account %q created, expires %s", username, expiresAt)
	return &Account{
		Username:  username,
		Password:  password,
		Days:      days,
		Limit:     limit,
		ProxyID:   identity,
		ExpiresAt: expiresAt,
	}, nil
}

// addClient 在锁内完成文档的读改写。重复检查到写回之间不会被
// 本进程的其他操作插入。
func (m *Manager) addClient(ctx context.Context, username, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.store.Read(ctx)
	if err != nil {
		return err
	}

	inbound := doc.FindClientInbound(m.protocol)
	if inbound == nil {
		return utils.NewConfigShapeError(m.protocol)
	}
	if inbound.HasClient(username) {
		return utils.NewDuplicateAccountError(username)
	}

	inbound.AddClient(xray.Client{ID: identity, Level: 0, Email: username})
	return m.store.Write(ctx, doc)
}

// Renew 把 OS 账号的到期日改为 now + days 天，不碰代理配置文档
func (m *Manager) Renew(ctx context.Context, username string, days int) (string, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return "", err
	}
	if err := utils.ValidateDays(days); err != nil {
		return "", err
	}

	out, err := m.runner.Run(ctx, renewScript(username, days))
	if err != nil {
		return "", err
	}
	body, rc, _ := splitStatus(out)
	switch rc {
	case statusOK:
		utils.Info("account %q renewed for %d days", username, days)
		return strings.TrimSpace(body), nil
	case statusNotFound:
		return "", utils.NewRemoteNotFoundError(username)
	default:
		return "", utils.NewCommandError(body, nil)
	}
}

// RotatePassword 就地修改 OS 账号的密码（days > 0 时同时改到期
// 日）并重写明文密码附属文件。绝不删除重建账号，代理身份保持
// 不变。
func (m *Manager) RotatePassword(ctx context.Context, username, password string, days int) (bool, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return false, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return false, err
	}
	if days != 0 {
		if err := utils.ValidateDays(days); err != nil {
			return false, err
		}
	}

	out, err := m.runner.Run(ctx, rotatePasswordScript(username, password, days))
	if err != nil {
		return false, err
	}
	body, rc, _ := splitStatus(out)
	switch rc {
	case statusOK:
		utils.Info("password rotated for account %q", username)
		return true, nil
	case statusNotFound:
		return false, utils.NewRemoteNotFoundError(username)
	default:
		return false, utils.NewCommandError(body, nil)
	}
}

// Delete 删除账号。OS 侧先删，代理配置文档后删：两步之间崩溃会
// 留下孤儿代理身份，可恢复（再次 Delete 或 Info 可见），比反向
// 顺序留下无主 OS 账号安全。editOnly 为 true 时只删 OS 侧，代理
// 身份保留，供密码轮换流程使用。
func (m *Manager) Delete(ctx context.Context, username string, editOnly bool) (bool, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return false, err
	}

	out, err := m.runner.Run(ctx, deleteUserScript(username))
	if err != nil {
		return false, err
	}
	_, rc, _ := splitStatus(out)
	osRemoved := rc == statusOK

	if editOnly {
		if !osRemoved {
			return false, utils.NewRemoteNotFoundError(username)
		}
		utils.Info("OS account %q removed, proxy identity retained", username)
		return true, nil
	}

	if !osRemoved {
		// OS 账号不存在也继续清理文档，顺带修复删除中途崩溃
		// 留下的孤儿身份
		utils.Warning("OS account %q not found, cleaning up proxy configuration anyway", username)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.store.Read(ctx)
	if err != nil {
		return false, err
	}
	removed := doc.RemoveClient(username)
	if removed > 0 {
		if err := m.store.Write(ctx, doc); err != nil {
			return false, err
		}
	}

	if !osRemoved && removed == 0 {
		return false, utils.NewRemoteNotFoundError(username)
	}
	utils.Info("account %q deleted (%d proxy client record(s) removed)", username, removed)
	return true, nil
}

// List 枚举远程明文密码附属目录，一条远程命令返回全部账号。
// 远程失败降级为空列表，与面板的历史行为一致。
func (m *Manager) List(ctx context.Context) []Credential {
	out, err := m.runner.Run(ctx, listUsersScript())
	if err != nil {
		utils.Error("cannot list remote accounts: %v", err)
		return []Credential{}
	}

	creds := []Credential{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		username, password, _ := strings.Cut(line, " ")
		creds = append(creds, Credential{Username: username, Password: password})
	}
	return creds
}

// Info 合并两侧状态：代理配置文档中的客户端身份和 OS 账号的到期
// 字段。到期字段为 "never" 表示永不过期；没有任何输出表示账号
// 不存在；其余文本必须能解析为日期。Info 从不修改任何状态。
func (m *Manager) Info(ctx context.Context, username string) (*Info, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return nil, err
	}

	info := &Info{Username: username}

	doc, err := m.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if c, found := doc.FindClient(username); found {
		info.ProxyID = c.ID
	}

	out, err := m.runner.Run(ctx, expirationScript(username))
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(out)
	switch {
	case text == "":
		return info, nil
	case strings.EqualFold(text, "never"):
		info.Exists = true
		return info, nil
	}

	for _, layout := range expirationLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			info.Exists = true
			info.ExpiresAt = &t
			return info, nil
		}
	}
	return nil, utils.NewInvalidExpirationError(text)
}

// runChecked 执行带状态行的脚本并把非零状态转成错误
func (m *Manager) runChecked(ctx context.Context, script string) error {
	out, err := m.runner.Run(ctx, script)
	if err != nil {
		return err
	}
	body, rc, ok := splitStatus(out)
	if ok && rc != statusOK {
		return utils.NewCommandError(body, nil)
	}
	return nil
}
