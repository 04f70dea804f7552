// 包 store: 提供与 PostgreSQL 的数据访问层，读写区域统计表
package store

import (
	"context"
	"database/sql"

	"india-heatmap/internal/logger"
	"india-heatmap/internal/migrate"
	"india-heatmap/internal/stats"
	"india-heatmap/internal/utils"
)

// Store: 数据库访问入口，持有连接池；实现 stats.Source
type Store struct {
	db *sql.DB
}

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := utils.OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// Prepare: 确认连接可用并确保统计表存在；首次使用前调用
func (s *Store) Prepare(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	return migrate.EnsureSchema(s.db)
}

// record: NULL 指标视为缺失，交由 stats.Prepare 填充
func record(name string, metric sql.NullFloat64) stats.Record {
	if !metric.Valid {
		return stats.Record{Name: name, Missing: true}
	}
	return stats.Record{Name: name, Metric: metric.Float64}
}

// 文档注释：读取区域统计表
// 背景：统计数据可由运维维护在数据库中，替代内置表；按插入顺序返回，使重名处理与内置表一致。
// 返回：空表不是错误，由上游替换为占位行。
func (s *Store) Load(ctx context.Context) (stats.Table, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, metric FROM _heatmap_regions ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out stats.Table
	for rows.Next() {
		var name string
		var metric sql.NullFloat64
		if err := rows.Scan(&name, &metric); err != nil {
			return nil, err
		}
		out = append(out, record(name, metric))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("db_regions_loaded", "rows", len(out))
	return out, nil
}

// 文档注释：写入区域统计
// 约束：单事务；同名行覆盖指标但保留原有顺序；Missing 写为 NULL。
func (s *Store) UpsertRegions(ctx context.Context, t stats.Table) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO _heatmap_regions(name, metric, updated_at)
        VALUES($1, $2, now())
        ON CONFLICT (name) DO UPDATE SET metric=EXCLUDED.metric, updated_at=now()`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	n := 0
	for _, r := range t {
		var metric sql.NullFloat64
		if !r.Missing {
			metric = sql.NullFloat64{Float64: r.Metric, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.Name, metric); err != nil {
			return n, err
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logger.L().Debug("db_regions_upserted", "rows", n)
	return n, nil
}

// ClearRegions: 清空统计表，用于重新导入
func (s *Store) ClearRegions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM _heatmap_regions`)
	return err
}
