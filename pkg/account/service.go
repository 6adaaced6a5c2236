package account

import (
	"context"
	"strings"

	"github.com/yourusername/xvp-go/pkg/remote"
	"github.com/yourusername/xvp-go/pkg/utils"
)

// ServiceName 远程代理服务的 systemd 单元名
const ServiceName = "xray"

// ServiceManager 通过远程执行通道控制代理服务
type ServiceManager struct {
	runner remote.Runner
}

func NewServiceManager(runner remote.Runner) *ServiceManager {
	return &ServiceManager{runner: runner}
}

// Restart 重启代理服务
func (sm *ServiceManager) Restart(ctx context.Context) error {
	_, err := sm.runner.Run(ctx, "systemctl restart "+ServiceName)
	return err
}

// DaemonReload 重新加载 systemd 单元定义
func (sm *ServiceManager) DaemonReload(ctx context.Context) error {
	_, err := sm.runner.Run(ctx, "systemctl daemon-reload")
	return err
}

// Status 查询服务状态。systemctl is-active 在服务停止时以非零
// 退出，此时输出文本（"inactive" 等）仍是有效的状态值。
func (sm *ServiceManager) Status(ctx context.Context) (string, error) {
	out, err := sm.runner.Run(ctx, "systemctl is-active "+ServiceName)
	state := strings.TrimSpace(out)
	if err != nil {
		if utils.IsType(err, utils.ErrCommand) && state != "" {
			return state, nil
		}
		return "", err
	}
	return state, nil
}
