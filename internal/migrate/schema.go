package migrate

import (
	"context"

	"ip-verify/internal/logger"
	"ip-verify/internal/sink"
)

// 背景：选用 postgres sink 时首次运行自动建表
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；表只保存原始文本行，不拆分结构化字段
func EnsureSchema(ctx context.Context, db sink.Execer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _ip_verify_log (
            id BIGSERIAL PRIMARY KEY,
            line TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_ip_verify_log_created ON _ip_verify_log(created_at)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
