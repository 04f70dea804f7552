package main

import (
	"flag"
	"os"
	"time"

	"india-heatmap/internal/copyright"
	"india-heatmap/internal/logger"
)

// 文档注释：刷新项目文件中的版权年份
// 用法：copyright-update [-owner NAME] [-year YYYY] [file ...]；未给文件时检查默认列表
func main() {
	logger.Setup()
	owner := flag.String("owner", copyright.DefaultOwner, "copyright owner to match")
	year := flag.Int("year", time.Now().Year(), "target year")
	flag.Parse()
	files := flag.Args()
	if len(files) == 0 {
		files = copyright.DefaultFiles
	}
	copyright.New(*owner, *year, os.Stdout).Run(files)
}
