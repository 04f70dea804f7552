package middleware

import (
	"net"
	"net/http"
	"os"
	"strings"

	"india-heatmap/internal/logger"
)

// 文档注释：来源地址白名单（IP/CIDR）
// 背景：预览服务可能监听在非回环地址上，/refresh 会触发下载与重写文件，可按来源地址收紧访问。
// 约束：支持 IPv4/IPv6 CIDR；来源以 RemoteAddr 为准，RealIPHeader 非空时取该头的首个有效 IP。
type Allowlist struct {
	IPs          map[string]struct{}
	CIDRs        []*net.IPNet
	RealIPHeader string
}

// AllowlistFromEnv：PREVIEW_ALLOW_IPS / PREVIEW_ALLOW_CIDRS 为逗号分隔列表；
// PREVIEW_ALLOW_LOCAL=true 放行回环地址；PREVIEW_REAL_IP_HEADER 指定上游真实 IP 头。
// 列表全部为空时返回 nil，表示不限制。
func AllowlistFromEnv() *Allowlist {
	a := &Allowlist{IPs: map[string]struct{}{}, RealIPHeader: strings.TrimSpace(os.Getenv("PREVIEW_REAL_IP_HEADER"))}
	for _, p := range strings.Split(os.Getenv("PREVIEW_ALLOW_IPS"), ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			a.IPs[ip.String()] = struct{}{}
		}
	}
	for _, c := range strings.Split(os.Getenv("PREVIEW_ALLOW_CIDRS"), ",") {
		if _, n, err := net.ParseCIDR(strings.TrimSpace(c)); err == nil {
			a.CIDRs = append(a.CIDRs, n)
		}
	}
	if os.Getenv("PREVIEW_ALLOW_LOCAL") == "true" {
		a.IPs["127.0.0.1"] = struct{}{}
		a.IPs["::1"] = struct{}{}
	}
	if len(a.IPs) == 0 && len(a.CIDRs) == 0 {
		return nil
	}
	return a
}

func (a *Allowlist) allowed(ip net.IP) bool {
	if _, ok := a.IPs[ip.String()]; ok {
		return true
	}
	for _, n := range a.CIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (a *Allowlist) clientIP(r *http.Request) net.IP {
	if a.RealIPHeader != "" {
		if raw := r.Header.Get(a.RealIPHeader); raw != "" {
			if ip := net.ParseIP(strings.TrimSpace(strings.Split(raw, ",")[0])); ip != nil {
				return ip
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}

// Guard：来源不在白名单时返回 403；a 为 nil 时原样返回
func (a *Allowlist) Guard(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := a.clientIP(r)
		if ip == nil || !a.allowed(ip) {
			logger.L().Debug("allowlist_block", "remote", r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
