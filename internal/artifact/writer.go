// 包 artifact：把渲染结果写到固定路径
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"india-heatmap/internal/logger"
	"india-heatmap/internal/metrics"
)

var ErrEmpty = errors.New("empty artifact")

// 测试中替换以模拟改名失败
var rename = os.Rename

// 文档注释：写出产物
// 背景：先写同目录临时文件再改名，浏览器或预览服务不会读到写了一半的文件。
// 约束：目标已存在时直接覆盖，不做确认；目标目录不存在时创建；失败时清理临时文件，旧文件保持原样。
func Write(path string, payload []byte) error {
	if len(payload) == 0 {
		return ErrEmpty
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmp.Write(payload); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := rename(tmpName, path); err != nil {
		if err := replaceViaBackup(tmpName, path); err != nil {
			return fmt.Errorf("replace %s: %w", path, err)
		}
	}
	ok = true
	metrics.ArtifactBytes.Set(float64(len(payload)))
	logger.L().Debug("artifact_written", "path", path, "bytes", len(payload))
	return nil
}

// 文档注释：改名覆盖失败时的兜底（Windows 上目标存在会导致 Rename 失败）
// 约束：旧文件先改名为 .bak 而不是删除；新文件就位后才删除备份，否则把备份改回原名。
func replaceViaBackup(tmp, path string) error {
	if _, err := os.Stat(path); err != nil {
		return rename(tmp, path)
	}
	bak := path + ".bak"
	_ = os.Remove(bak)
	if err := rename(path, bak); err != nil {
		return err
	}
	if err := rename(tmp, path); err != nil {
		if rerr := rename(bak, path); rerr != nil {
			return errors.Join(err, fmt.Errorf("restore %s: %w", bak, rerr))
		}
		return err
	}
	_ = os.Remove(bak)
	return nil
}
