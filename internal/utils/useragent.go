package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds the parts of a User-Agent string recorded against a
// login session
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, unknown
	Platform   string `json:"platform"`    // android, ios, windows, mac, linux, unknown
	OS         string `json:"os"`          // Android 13, iOS 17, etc.
}

var platformNames = map[string]string{
	"android":   "android",
	"ios":       "ios",
	"iphone os": "ios",
	"windows":   "windows",
	"mac os x":  "mac",
	"macos":     "mac",
	"linux":     "linux",
	"ubuntu":    "linux",
}

// ParseUserAgent extracts device information from a User-Agent string
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{DeviceType: "unknown", Platform: "unknown", OS: "Unknown"}
	}

	parser := ua.New(userAgent)

	info := DeviceInfo{
		DeviceType: deviceType(parser),
		Platform:   "unknown",
		OS:         "Unknown",
	}

	osInfo := parser.OSInfo()
	if osInfo.Name != "" {
		info.OS = osInfo.Name
		if osInfo.Version != "" {
			info.OS += " " + osInfo.Version
		}
	}

	lower := strings.ToLower(osInfo.Name)
	for key, platform := range platformNames {
		if strings.Contains(lower, key) {
			info.Platform = platform
			break
		}
	}

	return info
}

func deviceType(parser *ua.UserAgent) string {
	if !parser.Mobile() {
		return "desktop"
	}
	if strings.Contains(strings.ToLower(parser.UA()), "ipad") ||
		strings.Contains(strings.ToLower(parser.UA()), "tablet") {
		return "tablet"
	}
	return "mobile"
}
