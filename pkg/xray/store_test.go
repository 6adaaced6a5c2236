package xray

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/yourusername/xvp-go/pkg/utils"
)

// fakeFiles 内存版 remote.FileStore
type fakeFiles struct {
	data     map[string][]byte
	readErr  error
	writeErr error
	writes   int
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{data: map[string][]byte{}}
}

func (f *fakeFiles) ReadFile(_ context.Context, path string) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	data, ok := f.data[path]
	if !ok {
		return nil, errors.New("file does not exist")
	}
	return data, nil
}

func (f *fakeFiles) WriteFile(_ context.Context, path string, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.data[path] = append([]byte(nil), data...)
	return nil
}

func TestStoreRead(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidDocument", func(t *testing.T) {
		files := newFakeFiles()
		files.data[DefaultConfigPath] = []byte(sampleConfig)

		doc, err := NewStore(files, "").Read(ctx)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if doc.FindClientInbound("vless") == nil {
			t.Error("parsed document should contain the vless inbound")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := NewStore(newFakeFiles(), "").Read(ctx)
		if !utils.IsType(err, utils.ErrConfigRead) {
			t.Errorf("expected config read error, got %v", err)
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		files := newFakeFiles()
		files.data["/tmp/conf.json"] = []byte("{not json")

		_, err := NewStore(files, "/tmp/conf.json").Read(ctx)
		if !utils.IsType(err, utils.ErrConfigRead) {
			t.Errorf("expected config read error, got %v", err)
		}
	})

	t.Run("TransportFailure", func(t *testing.T) {
		files := newFakeFiles()
		files.readErr = errors.New("connection reset")

		_, err := NewStore(files, "").Read(ctx)
		if !utils.IsType(err, utils.ErrConfigRead) {
			t.Errorf("expected config read error, got %v", err)
		}
	})
}

// 写后立读必须深度等价
func TestStoreWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	files := newFakeFiles()
	files.data[DefaultConfigPath] = []byte(sampleConfig)
	store := NewStore(files, "")

	doc, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	doc.FindClientInbound("vless").AddClient(Client{ID: "11111111-2222-4333-8444-555555555555", Email: "bob"})

	if err := store.Write(ctx, doc); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("second Read failed: %v", err)
	}

	// 原始字段的缩进格式可能不同，按语义比较
	var gotVal, wantVal interface{}
	gotData, err := Marshal(got)
	if err != nil {
		t.Fatalf("Marshal(got) failed: %v", err)
	}
	wantData, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal(doc) failed: %v", err)
	}
	if err := json.Unmarshal(gotData, &gotVal); err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if err := json.Unmarshal(wantData, &wantVal); err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if !reflect.DeepEqual(gotVal, wantVal) {
		t.Errorf("round trip mismatch\n got: %v\nwant: %v", gotVal, wantVal)
	}
}

func TestStoreWriteTransportFailure(t *testing.T) {
	files := newFakeFiles()
	files.writeErr = errors.New("broken pipe")
	store := NewStore(files, "")

	err := store.Write(context.Background(), mustParse(t, sampleConfig))
	if !utils.IsType(err, utils.ErrConfigWrite) {
		t.Errorf("expected config write error, got %v", err)
	}
}
