package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/xvp-go/pkg/account"
	"github.com/yourusername/xvp-go/pkg/panel"
	"github.com/yourusername/xvp-go/pkg/remote"
	"github.com/yourusername/xvp-go/pkg/status"
	"github.com/yourusername/xvp-go/pkg/utils"
	"github.com/yourusername/xvp-go/pkg/xray"
)

var version = "dev"

var (
	configPath string
	verbose    bool
	noColor    bool
	cfg        *panel.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xvp",
		Short: "XVP-Go: SSH + Xray VPN 账号管理面板",
		Long: `XVP-Go 管理一台远程 Linux 主机上的 VPN 账号：
SSH 隧道账号（系统用户）和 Xray 代理客户端（配置文档）保持同步。

所有操作都通过 SSH 在远程主机上执行，本机不需要 root 权限。`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				utils.SetLogLevel(utils.DEBUG)
			}
			if noColor {
				utils.DisableColor()
			}

			var err error
			cfg, err = panel.LoadConfig(configPath)
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径 (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "禁用彩色输出")

	rootCmd.AddCommand(
		createServeCommand(),
		createAddCommand(),
		createRenewCommand(),
		createPasswdCommand(),
		createRemoveCommand(),
		createListCommand(),
		createInfoCommand(),
		createOnlineCommand(),
		createVersionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		var xe *utils.XVPError
		if errors.As(err, &xe) {
			fmt.Fprint(os.Stderr, xe.GetFormattedError())
		} else {
			utils.PrintError("Error: %v", err)
		}
		os.Exit(1)
	}
}

func newManager() *account.Manager {
	sshCfg := cfg.Remote()
	runner := remote.NewSSHRunner(sshCfg)
	store := xray.NewStore(remote.NewSFTPStore(sshCfg), cfg.ProxyConfigPath)
	return account.NewManager(runner, store, cfg.TargetProtocol)
}

func requireRemote() error {
	if cfg.SSH.Host == "" || cfg.SSH.User == "" || cfg.SSH.Password == "" {
		return fmt.Errorf("remote credentials are not configured (see --config or SSH_IP/SSH_USER/SSH_PASSWORD)")
	}
	return nil
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Minute)
}

func createServeCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 Web 面板",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				cfg.ListenAddr = listen
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return panel.New(cfg).ListenAndServe()
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "监听地址 (默认 :8080)")
	return cmd
}

func createAddCommand() *cobra.Command {
	var (
		days     int
		limit    int
		password string
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "创建 VPN 账号 (SSH + Xray)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRemote(); err != nil {
				return err
			}
			if password == "" {
				password = utils.GeneratePassword(12)
			}

			ctx, cancel := opContext()
			defer cancel()

			acct, err := newManager().Create(ctx, args[0], password, days, limit)
			if err != nil {
				return err
			}

			utils.PrintSuccess("账号已创建")
			utils.PrintKeyValue("用户名", acct.Username)
			utils.PrintKeyValue("密码", acct.Password)
			utils.PrintKeyValue("到期日", acct.ExpiresAt)
			utils.PrintKeyValue("连接数上限", fmt.Sprintf("%d", acct.Limit))
			utils.PrintKeyValue("代理 UUID", acct.ProxyID)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 30, "有效天数")
	cmd.Flags().IntVarP(&limit, "limit", "m", 1, "并发连接数上限")
	cmd.Flags().StringVarP(&password, "password", "p", "", "密码 (留空自动生成)")
	return cmd
}

func createRenewCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "renew <username>",
		Short: "续期账号 (只改到期日)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRemote(); err != nil {
				return err
			}

			ctx, cancel := opContext()
			defer cancel()

			result, err := newManager().Renew(ctx, args[0], days)
			if err != nil {
				return err
			}
			utils.PrintSuccess("%s", result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 30, "从今天起的有效天数")
	return cmd
}

func createPasswdCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "passwd <username> <password>",
		Short: "就地修改账号密码",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRemote(); err != nil {
				return err
			}

			ctx, cancel := opContext()
			defer cancel()

			if _, err := newManager().RotatePassword(ctx, args[0], args[1], days); err != nil {
				return err
			}
			utils.PrintSuccess("账号 %s 的密码已更新", args[0])
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "同时把到期日改为今天起 N 天 (0 = 不改)")
	return cmd
}

func createRemoveCommand() *cobra.Command {
	var editOnly bool

	cmd := &cobra.Command{
		Use:   "remove <username>",
		Short: "删除账号 (OS 用户和代理客户端)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRemote(); err != nil {
				return err
			}

			ctx, cancel := opContext()
			defer cancel()

			if _, err := newManager().Delete(ctx, args[0], editOnly); err != nil {
				return err
			}
			utils.PrintSuccess("账号 %s 已删除", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&editOnly, "edit", false, "只删 OS 侧，保留代理身份")
	return cmd
}

func createListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出全部账号",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRemote(); err != nil {
				return err
			}

			ctx, cancel := opContext()
			defer cancel()

			creds := newManager().List(ctx)
			if len(creds) == 0 {
				utils.PrintInfo("没有账号")
				return nil
			}

			utils.PrintSection("账号列表")
			for _, c := range creds {
				utils.PrintKeyValue(c.Username, c.Password)
			}
			return nil
		},
	}
}

func createInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <username>",
		Short: "查看账号状态 (到期日和代理身份)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRemote(); err != nil {
				return err
			}

			ctx, cancel := opContext()
			defer cancel()

			info, err := newManager().Info(ctx, args[0])
			if err != nil {
				return err
			}

			utils.PrintSection("账号 " + info.Username)
			if !info.Exists {
				utils.PrintWarning("OS 账号不存在")
				if info.ProxyID != "" {
					utils.PrintWarning("代理身份残留: %s (可用 remove 清理)", info.ProxyID)
				}
				return nil
			}

			switch {
			case info.ExpiresAt == nil:
				utils.PrintKeyValue("到期日", "永不过期")
			case info.Expired(time.Now()):
				utils.PrintKeyValue("到期日", utils.Red(info.ExpiresAt.Format("2006-01-02"))+" (已过期)")
			default:
				utils.PrintKeyValue("到期日", info.ExpiresAt.Format("2006-01-02"))
			}
			if info.ProxyID != "" {
				utils.PrintKeyValue("代理 UUID", info.ProxyID)
			}
			return nil
		},
	}
}

func createOnlineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "online",
		Short: "查看在线会话",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRemote(); err != nil {
				return err
			}

			ctx, cancel := opContext()
			defer cancel()

			sshCfg := cfg.Remote()
			snap := status.NewAggregator(remote.NewSSHRunner(sshCfg), cfg.AccessLogPath).Snapshot(ctx)

			utils.PrintSection("SSH 会话")
			for _, s := range snap.SSH {
				utils.PrintKeyValue(s.User, fmt.Sprintf("%d", s.Count))
			}
			utils.PrintSection("代理会话")
			for _, s := range snap.V2Ray {
				utils.PrintKeyValue(s.User, fmt.Sprintf("%d", s.Count))
			}
			return nil
		},
	}
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xvp %s\n", version)
		},
	}
}
