package migrate

import (
	"database/sql"

	"india-heatmap/internal/logger"
)

// 背景：首次运行自动创建区域统计表，保障导入与读取
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；metric 允许 NULL 表示缺失；seq 记录首次写入顺序
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _heatmap_regions (
            seq BIGSERIAL NOT NULL,
            name TEXT PRIMARY KEY,
            metric DOUBLE PRECISION NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_heatmap_regions_seq ON _heatmap_regions(seq)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
