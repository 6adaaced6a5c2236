package status

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeRunner struct {
	out   string
	err   error
	calls int
}

func (r *fakeRunner) Run(_ context.Context, _ string) (string, error) {
	r.calls++
	return r.out, r.err
}

func TestSnapshot(t *testing.T) {
	t.Run("CountsPerUser", func(t *testing.T) {
		runner := &fakeRunner{out: `{"ssh":["alice","alice","bob"],"v2ray":["alice"]}` + "\n"}
		snap := NewAggregator(runner, "").Snapshot(context.Background())

		wantSSH := []Session{{User: "alice", Count: 2}, {User: "bob", Count: 1}}
		if !reflect.DeepEqual(snap.SSH, wantSSH) {
			t.Errorf("ssh sessions = %+v, want %+v", snap.SSH, wantSSH)
		}
		wantProxy := []Session{{User: "alice", Count: 1}}
		if !reflect.DeepEqual(snap.V2Ray, wantProxy) {
			t.Errorf("v2ray sessions = %+v, want %+v", snap.V2Ray, wantProxy)
		}
	})

	t.Run("EmptyWindow", func(t *testing.T) {
		runner := &fakeRunner{out: `{"ssh":[],"v2ray":[]}`}
		snap := NewAggregator(runner, "").Snapshot(context.Background())

		if len(snap.SSH) != 0 || len(snap.V2Ray) != 0 {
			t.Errorf("expected empty snapshot, got %+v", snap)
		}
		// 空快照必须是空数组而不是 null
		if snap.SSH == nil || snap.V2Ray == nil {
			t.Error("snapshot slices must be non-nil")
		}
	})

	t.Run("RemoteFailureDegradesToEmpty", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("connection refused")}
		snap := NewAggregator(runner, "").Snapshot(context.Background())

		if len(snap.SSH) != 0 || len(snap.V2Ray) != 0 {
			t.Errorf("expected empty snapshot on failure, got %+v", snap)
		}
	})

	t.Run("GarbageDegradesToEmpty", func(t *testing.T) {
		runner := &fakeRunner{out: "bash: jq: command not found"}
		snap := NewAggregator(runner, "").Snapshot(context.Background())

		if len(snap.SSH) != 0 || len(snap.V2Ray) != 0 {
			t.Errorf("expected empty snapshot on garbage, got %+v", snap)
		}
	})

	t.Run("IgnoresBlankUsernames", func(t *testing.T) {
		runner := &fakeRunner{out: `{"ssh":["","alice"],"v2ray":[""]}`}
		snap := NewAggregator(runner, "").Snapshot(context.Background())

		if len(snap.SSH) != 1 || snap.SSH[0].User != "alice" {
			t.Errorf("blank usernames should be dropped, got %+v", snap.SSH)
		}
	})
}

func TestOnlineScript(t *testing.T) {
	a := NewAggregator(&fakeRunner{}, "/custom/access.log")
	script := a.onlineScript()

	for _, want := range []string{
		"sshd:.*\\[priv\\]",
		"'/custom/access.log'",
		"TIME_LIMIT=60",
		"sed 's/@.*//'",
		"jq -n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script should contain %q", want)
		}
	}
}
