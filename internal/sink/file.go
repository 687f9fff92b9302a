package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink：UTF-8 文本文件，每行一条记录
// 约束：每次追加都以 O_APPEND 打开并单次写入整行，依赖系统追加原语保证行级原子；不持有长期句柄
type FileSink struct {
	path string
}

func NewFile(path string) *FileSink { return &FileSink{path: path} }

func (f *FileSink) Path() string { return f.path }

func (f *FileSink) Append(_ context.Context, line string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	_, werr := fh.Write([]byte(line + "\n"))
	cerr := fh.Close()
	if werr != nil {
		return fmt.Errorf("append log line: %w", werr)
	}
	return cerr
}

func (f *FileSink) Close() error { return nil }
