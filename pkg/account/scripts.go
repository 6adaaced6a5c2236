package account

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/xvp-go/pkg/utils"
)

// 远程主机上的账号附属文件
const (
	// 每账号一个明文密码文件，文件名即用户名
	passwordDir = "/etc/SSHPlus/senha"
	// 共享的 "用户名 连接数上限" 数据库
	accountsDB = "/root/usuarios.db"
	// 旧版面板遗留的账号目录，删除时一并清理
	legacyUserDir = "/etc/usuarios"
)

// 脚本不靠退出码和输出文本猜结果，而是在末尾打印一行
// XVP_STATUS=<n> 机器可读状态。
const statusSentinel = "XVP_STATUS="

const (
	statusOK       = 0
	statusFailed   = 1
	statusNotFound = 3
)

// splitStatus 从脚本输出中剥离状态行。没有状态行时 ok 为 false，
// 输出原样返回。
func splitStatus(output string) (body string, rc int, ok bool) {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, statusSentinel) {
			break
		}
		n, err := strconv.Atoi(strings.TrimPrefix(line, statusSentinel))
		if err != nil {
			break
		}
		return strings.Join(append(lines[:i], lines[i+1:]...), "\n"), n, true
	}
	return output, 0, false
}

// createUserScript 创建 OS 账号：openssl 单向散列密码、到期日、
// 禁用登录 shell、写入明文密码附属文件并登记连接数上限。
// username 已通过白名单校验，password 必须经 ShellQuote 包装。
func createUserScript(username, password string, days, limit int) string {
	return fmt.Sprintf(`#!/bin/bash
username=%s
password=%s
dias=%d
sshlimiter=%d
final=$(date "+%%Y-%%m-%%d" -d "+$dias days")
pass=$(openssl passwd -1 "$password")
if ! useradd -e "$final" -M -s /bin/false -p "$pass" "$username"; then
    echo "%s%d"
    exit 0
fi
echo "$password" > %s/"$username"
echo "$username $sshlimiter" >> %s
echo "%s%d"
`, utils.ShellQuote(username), utils.ShellQuote(password), days, limit,
		statusSentinel, statusFailed, passwordDir, accountsDB, statusSentinel, statusOK)
}

// renewScript 只改 OS 账号的到期日，不碰代理配置文档
func renewScript(username string, days int) string {
	return fmt.Sprintf(`#!/bin/bash
username=%s
dias=%d
if ! id "$username" >/dev/null 2>&1; then
    echo "%s%d"
    exit 0
fi
finaldate=$(date "+%%Y-%%m-%%d" -d "+$dias days")
if chage -E "$finaldate" "$username"; then
    echo "expiration set to $finaldate"
    echo "%s%d"
else
    echo "%s%d"
fi
`, utils.ShellQuote(username), days,
		statusSentinel, statusNotFound,
		statusSentinel, statusOK,
		statusSentinel, statusFailed)
}

// rotatePasswordScript 就地修改密码（可选同时改到期日），绝不
// 删除重建账号。days 为 0 时到期日保持不变。
func rotatePasswordScript(username, password string, days int) string {
	var chage string
	if days > 0 {
		chage = fmt.Sprintf(`finaldate=$(date "+%%Y-%%m-%%d" -d "+%d days")
chage -E "$finaldate" "$username"
`, days)
	}
	return fmt.Sprintf(`#!/bin/bash
username=%s
password=%s
if ! id "$username" >/dev/null 2>&1; then
    echo "%s%d"
    exit 0
fi
%sif ! echo "$username:$password" | chpasswd; then
    echo "%s%d"
    exit 0
fi
echo "$password" > %s/"$username"
echo "%s%d"
`, utils.ShellQuote(username), utils.ShellQuote(password),
		statusSentinel, statusNotFound,
		chage,
		statusSentinel, statusFailed,
		passwordDir, statusSentinel, statusOK)
}

// deleteUserScript 终止账号的所有进程、删除 OS 账号并清理全部
// 附属文件
func deleteUserScript(username string) string {
	return fmt.Sprintf(`#!/bin/bash
USR_EX=%s
if id "$USR_EX" >/dev/null 2>&1; then
    kill -9 $(ps -fu "$USR_EX" | awk '{print $2}' | grep -v PID) 2>/dev/null
    userdel "$USR_EX"
    grep -v "^$USR_EX[[:space:]]" %s > /tmp/ph && mv /tmp/ph %s
    rm %s/"$USR_EX" 1>/dev/null 2>/dev/null
    rm %s/"$USR_EX" 1>/dev/null 2>/dev/null
    echo "%s%d"
    exit 0
fi
echo "%s%d"
`, utils.ShellQuote(username), accountsDB, accountsDB,
		passwordDir, legacyUserDir,
		statusSentinel, statusOK,
		statusSentinel, statusNotFound)
}

// listUsersScript 把每个密码附属文件折叠成 "用户名 密码" 一行
func listUsersScript() string {
	return fmt.Sprintf(`for file in %s/*; do
  [ -f "$file" ] && echo "$(basename "$file") $(cat "$file")"
done
`, passwordDir)
}

// expirationScript 查询 OS 账号的到期字段。账号不存在时没有任何
// stdout 输出。
func expirationScript(username string) string {
	return fmt.Sprintf(`chage -l %s 2>/dev/null | grep -E 'Account expires' | cut -d ' ' -f3-`,
		utils.ShellQuote(username))
}
