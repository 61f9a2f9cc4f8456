package audit

import (
	"strings"

	"github.com/mssola/useragent"
)

// DescribeClient turns a User-Agent into "Browser on OS" for the audit trail.
func DescribeClient(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if ua.Bot() {
		return strings.TrimSpace(browser + " (bot)")
	}

	os := ua.OS()
	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			os = platform
		}
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
