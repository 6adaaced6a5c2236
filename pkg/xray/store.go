package xray

import (
	"context"
	"encoding/json"

	"github.com/yourusername/xvp-go/pkg/remote"
	"github.com/yourusername/xvp-go/pkg/utils"
)

// DefaultConfigPath 是远程主机上 Xray 配置文件的默认路径
const DefaultConfigPath = "/usr/local/etc/xray/config.json"

// Store 以整读整写的方式访问远程配置文档。
//
// 已知竞争：Write 是 last-writer-wins 覆盖，不是 compare-and-swap。
// 进程内的读改写序列由上层（account.Manager）用互斥锁串行化；
// 跨进程的并发写入仍会静默丢失一方的修改。
type Store struct {
	files remote.FileStore
	path  string
}

func NewStore(files remote.FileStore, path string) *Store {
	if path == "" {
		path = DefaultConfigPath
	}
	return &Store{files: files, path: path}
}

// Path 返回远程配置文件路径
func (s *Store) Path() string {
	return s.path
}

// Read 拉取并解析远程文档。文件缺失、传输失败或内容不是合法 JSON
// 都作为读错误返回。
func (s *Store) Read(ctx context.Context) (*Document, error) {
	data, err := s.files.ReadFile(ctx, s.path)
	if err != nil {
		return nil, utils.NewConfigReadError(s.path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, utils.NewConfigReadError(s.path, err)
	}
	return &doc, nil
}

// Marshal 序列化文档（两空格缩进，与面板历史写法一致）
func Marshal(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Write 序列化并覆盖远程文档。序列化失败时在任何远程字节发出之前
// 就中止：绝不发送残缺内容。
func (s *Store) Write(ctx context.Context, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return utils.NewConfigFormatError(err)
	}

	if err := s.files.WriteFile(ctx, s.path, data); err != nil {
		return utils.NewConfigWriteError(s.path, err)
	}

	utils.Debug("proxy configuration saved: %s (%d bytes)", s.path, len(data))
	return nil
}
