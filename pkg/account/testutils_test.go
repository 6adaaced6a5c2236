package account

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yourusername/xvp-go/pkg/xray"
)

// fakeRunner 按脚本内容匹配回放预置输出
type runnerRule struct {
	match string
	out   string
	err   error
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	rules []runnerRule
}

func (r *fakeRunner) respond(match, out string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, runnerRule{match: match, out: out, err: err})
}

func (r *fakeRunner) Run(_ context.Context, script string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, script)
	for _, rule := range r.rules {
		if strings.Contains(script, rule.match) {
			return rule.out, rule.err
		}
	}
	return "XVP_STATUS=0\n", nil
}

func (r *fakeRunner) count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, call := range r.calls {
		if strings.Contains(call, substr) {
			n++
		}
	}
	return n
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// fakeFiles 内存版 remote.FileStore
type fakeFiles struct {
	mu     sync.Mutex
	data   map[string][]byte
	reads  int
	writes int
}

func (f *fakeFiles) ReadFile(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	data, ok := f.data[path]
	if !ok {
		return nil, errors.New("file does not exist")
	}
	return data, nil
}

func (f *fakeFiles) WriteFile(_ context.Context, path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.data[path] = append([]byte(nil), data...)
	return nil
}

func (f *fakeFiles) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

const testConfig = `{
  "log": {"access": "/var/log/xray/access.log"},
  "inbounds": [
    {"tag": "api", "protocol": "dokodemo-door", "settings": {"address": "127.0.0.1"}},
    {"tag": "vless-in", "protocol": "vless", "port": 443,
     "settings": {"clients": [], "decryption": "none"}}
  ],
  "outbounds": [{"protocol": "freedom"}]
}`

var testTime = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, config string) (*Manager, *fakeRunner, *fakeFiles) {
	t.Helper()
	runner := &fakeRunner{}
	files := &fakeFiles{data: map[string][]byte{xray.DefaultConfigPath: []byte(config)}}
	m := NewManager(runner, xray.NewStore(files, ""), "")
	m.now = func() time.Time { return testTime }
	return m, runner, files
}

func currentDocument(t *testing.T, files *fakeFiles) *xray.Document {
	t.Helper()
	doc, err := xray.NewStore(files, "").Read(context.Background())
	if err != nil {
		t.Fatalf("cannot re-read document: %v", err)
	}
	return doc
}
