// 包 utils：数据库、Redis 与 TLS 的连接工具，统一环境变量读取
package utils

import (
	"database/sql"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// 统计表很小且只在生成时读取一次，连接池保持很小
const (
	defaultMaxOpen  = 4
	defaultMaxIdle  = 2
	defaultLifetime = 30 * time.Minute
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return def
}

// 文档注释：由环境变量构造统计库 DSN
// 背景：PG_DSN 优先，便于直接粘贴托管库连接串；否则由 PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DB/PG_SSLMODE 拼接。
// 约束：用户名与密码经 URL 转义；附带 application_name 便于在 pg_stat_activity 中辨认。
func BuildPostgresDSNFromEnv() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(envOr("PG_HOST", "localhost"), envOr("PG_PORT", "5432")),
		Path:   "/" + envOr("PG_DB", "heatmap"),
	}
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(envOr("PG_USER", "postgres"), pass)
	} else {
		u.User = url.User(envOr("PG_USER", "postgres"))
	}
	q := url.Values{}
	q.Set("sslmode", envOr("PG_SSLMODE", "disable"))
	q.Set("application_name", "india-heatmap")
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenPostgres：按 DSN 打开连接池；池大小可由 PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS 覆盖，解析失败忽略
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(envInt("PG_MAX_OPEN_CONNS", defaultMaxOpen))
	db.SetMaxIdleConns(envInt("PG_MAX_IDLE_CONNS", defaultMaxIdle))
	db.SetConnMaxLifetime(defaultLifetime)
	return db, nil
}
