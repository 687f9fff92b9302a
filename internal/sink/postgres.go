package sink

import (
	"context"
	"database/sql"
	"io"
)

// Execer：*sql.DB 与 *sql.Tx 的公共子集
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresSink：逐行写入 _ip_verify_log，只保存原始文本行
// 约束：表结构由 migrate.EnsureSchema 创建
type PostgresSink struct {
	db Execer
}

func NewPostgres(db Execer) *PostgresSink { return &PostgresSink{db: db} }

func (s *PostgresSink) Append(ctx context.Context, line string) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO _ip_verify_log(line) VALUES($1)", line)
	return err
}

func (s *PostgresSink) Close() error {
	if c, ok := s.db.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
