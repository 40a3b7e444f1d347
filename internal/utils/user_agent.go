package utils

import "strings"

const defaultDesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36 Edg/128.0.0.0"

// DefaultUserAgent 返回默认的桌面浏览器 UA。
func DefaultUserAgent() string {
	return defaultDesktopUserAgent
}

// NormalizeUserAgent 当入参为空或不像浏览器 UA 时，返回默认 UA。
func NormalizeUserAgent(ua string) string {
	v := strings.TrimSpace(ua)
	if v == "" {
		return defaultDesktopUserAgent
	}
	if looksLikeBrowserUA(v) {
		return v
	}
	return defaultDesktopUserAgent
}

func looksLikeBrowserUA(ua string) bool {
	s := strings.ToLower(ua)
	return strings.HasPrefix(s, "mozilla/")
}
