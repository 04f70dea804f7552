// 包 copyright：刷新文本文件中的版权年份
package copyright

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"india-heatmap/internal/logger"
)

// DefaultOwner：版权声明中的所有者
const DefaultOwner = "CoastSense Project"

// DefaultFiles：未指定参数时检查的文件
var DefaultFiles = []string{
	"README.md",
	"india_heatmap.py",
	"static/js/main.js",
	"templates/dashboard.html",
	"india_heatmap.html",
	"LICENSE",
}

// Updater：按所有者匹配 "Copyright (c) YYYY <owner>" 并替换年份
type Updater struct {
	Owner string
	Year  int
	Out   io.Writer // 进度输出；nil 时丢弃

	re *regexp.Regexp
}

// New：owner 为空时使用 DefaultOwner
func New(owner string, year int, out io.Writer) *Updater {
	if owner == "" {
		owner = DefaultOwner
	}
	if out == nil {
		out = io.Discard
	}
	return &Updater{
		Owner: owner,
		Year:  year,
		Out:   out,
		re:    regexp.MustCompile(`Copyright \(c\) (\d{4}) ` + regexp.QuoteMeta(owner)),
	}
}

// Update：返回替换后的内容与被替换的旧年份（按出现顺序）
func (u *Updater) Update(content string) (string, []string) {
	year := strconv.Itoa(u.Year)
	var old []string
	out := u.re.ReplaceAllStringFunc(content, func(m string) string {
		y := u.re.FindStringSubmatch(m)[1]
		if y == year {
			return m
		}
		old = append(old, y)
		return "Copyright (c) " + year + " " + u.Owner
	})
	return out, old
}

// 文档注释：更新单个文件
// 约束：内容不变时不写回；保留原文件权限。
// 返回：是否写回。
func (u *Updater) UpdateFile(path string) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	next, old := u.Update(string(b))
	if len(old) == 0 {
		return false, nil
	}
	for _, y := range old {
		fmt.Fprintf(u.Out, "Updating %s: %s -> %d\n", path, y, u.Year)
	}
	mode := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(next), mode); err != nil {
		return false, err
	}
	logger.L().Debug("copyright_updated", "path", path, "year", u.Year)
	return true, nil
}

// 文档注释：依次处理文件列表并输出汇总
// 背景：单个文件的读写失败只报告，不中断其余文件。
// 返回：写回的文件数。
func (u *Updater) Run(paths []string) int {
	fmt.Fprintf(u.Out, "Updating copyright year to %d\n", u.Year)
	n := 0
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			fmt.Fprintf(u.Out, "Warning: File not found: %s\n", p)
			continue
		}
		ok, err := u.UpdateFile(p)
		if err != nil {
			fmt.Fprintf(u.Out, "Error processing %s: %v\n", p, err)
			continue
		}
		if ok {
			n++
		}
	}
	if n > 0 {
		fmt.Fprintf(u.Out, "Success: Updated copyright year in %d file(s)\n", n)
	} else {
		fmt.Fprintln(u.Out, "Info: All copyright notices are already up to date")
	}
	return n
}
