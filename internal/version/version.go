// 包 version：构建信息，由 -ldflags "-X india-heatmap/internal/version.Commit=..." 注入
package version

var (
	Version = "0.1.0"
	Commit  = "dev"
)

// UserAgent：对外 HTTP 请求使用的标识
func UserAgent() string { return "india-heatmap/" + Version }
