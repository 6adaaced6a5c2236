// Package status builds the combined online snapshot: live SSH tunnel
// sessions plus recent proxy connections from the Xray access log.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/xvp-go/pkg/remote"
	"github.com/yourusername/xvp-go/pkg/utils"
)

// DefaultAccessLog 远程主机上 Xray 访问日志的默认路径
const DefaultAccessLog = "/var/log/xray/access.log"

// 访问日志条目超过这个秒数就不再算"在线"
const freshnessWindowSeconds = 60

// Session 某个账号的在线会话数。count > 1 通常意味着同一账号的
// 多个并发连接，可用于连接数上限治理。
type Session struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// Snapshot 两类会话的合并快照
type Snapshot struct {
	SSH   []Session `json:"ssh"`
	V2Ray []Session `json:"v2ray"`
}

// Aggregator 用一条远程管道采集快照
type Aggregator struct {
	runner  remote.Runner
	logPath string
}

func NewAggregator(runner remote.Runner, logPath string) *Aggregator {
	if logPath == "" {
		logPath = DefaultAccessLog
	}
	return &Aggregator{runner: runner, logPath: logPath}
}

// onlineScript 在远程侧枚举 sshd [priv] 会话进程、筛选 60 秒内的
// 代理日志条目（去掉 email 的域名后缀），由 jq 汇成两个 JSON 数组
func (a *Aggregator) onlineScript() string {
	return fmt.Sprintf(`#!/bin/bash
ssh_users=$(ps aux | grep 'sshd:.*\[priv\]' | awk -F 'sshd: ' '{print $2}' | awk '{print $1}' | sort)
LOG_FILE=%s
CURRENT_TIME=$(date +%%s)
last_log_entries=$(tail -n 100 "$LOG_FILE" | grep -i 'email:')
TIME_LIMIT=%d

active_v2ray_users=$(echo "$last_log_entries" | while read -r line; do
    log_time=$(echo "$line" | awk '{print $1" "$2}')
    log_timestamp=$(date -d "$log_time" +%%s)
    time_diff=$((CURRENT_TIME - log_timestamp))

    if [ "$time_diff" -le "$TIME_LIMIT" ]; then
        echo "$line" | grep -oP '(?<=email: )\S+' | sed 's/@.*//'
    fi
done | sort | uniq)

ssh_json=$(echo "$ssh_users" | jq -R -s -c 'split("\n")[:-1]')
v2ray_json=$(echo "$active_v2ray_users" | jq -R -s -c 'split("\n")[:-1]')

jq -n --argjson ssh "$ssh_json" --argjson v2ray "$v2ray_json" '{ssh: $ssh, v2ray: $v2ray}'
`, utils.ShellQuote(a.logPath), freshnessWindowSeconds)
}

// Snapshot 采集在线状态。远程失败或输出不可解析时返回空快照而
// 不是错误：状态查询宁可降级为"未知"，也不拖垮调用方。
func (a *Aggregator) Snapshot(ctx context.Context) Snapshot {
	empty := Snapshot{SSH: []Session{}, V2Ray: []Session{}}

	out, err := a.runner.Run(ctx, a.onlineScript())
	if err != nil {
		utils.Warning("online snapshot failed, reporting empty: %v", err)
		return empty
	}

	var payload struct {
		SSH   []string `json:"ssh"`
		V2Ray []string `json:"v2ray"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &payload); err != nil {
		utils.Warning("online snapshot unparseable, reporting empty: %v", err)
		return empty
	}

	return Snapshot{
		SSH:   countSessions(payload.SSH),
		V2Ray: countSessions(payload.V2Ray),
	}
}

// countSessions 按用户名聚合计数，输出按用户名排序保证稳定
func countSessions(users []string) []Session {
	counts := map[string]int{}
	for _, user := range users {
		if user == "" {
			continue
		}
		counts[user]++
	}

	sessions := make([]Session, 0, len(counts))
	for user, count := range counts {
		sessions = append(sessions, Session{User: user, Count: count})
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].User < sessions[j].User })
	return sessions
}
