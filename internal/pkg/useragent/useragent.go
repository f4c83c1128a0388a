// Package useragent classifies raw User-Agent strings into the coarse
// device/browser/OS buckets used by the pixel logger. Client-side events
// carry their own classification, so this is deliberately a small fixed
// table rather than a full device database.
package useragent

import "strings"

// Info holds the classification of one User-Agent string. Empty Browser or
// OS means the agent could not be classified; DeviceType is always set.
type Info struct {
	DeviceType string
	Browser    string
	OS         string
}

var mobileMarkers = []string{"mobile", "android", "iphone", "ipod", "blackberry", "iemobile", "opera mini"}

var tabletMarkers = []string{"tablet", "ipad", "playbook", "silk"}

// Parse classifies a User-Agent string. An empty input yields an unknown
// device with no browser or OS.
func Parse(userAgent string) Info {
	if userAgent == "" {
		return Info{DeviceType: "unknown"}
	}

	ua := strings.ToLower(userAgent)

	info := Info{DeviceType: "desktop"}
	if containsAny(ua, mobileMarkers) {
		info.DeviceType = "mobile"
	} else if containsAny(ua, tabletMarkers) {
		info.DeviceType = "tablet"
	}

	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg") && !strings.Contains(ua, "opr"):
		info.Browser = "chrome"
	case strings.Contains(ua, "firefox"):
		info.Browser = "firefox"
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		info.Browser = "safari"
	case strings.Contains(ua, "edg"):
		info.Browser = "edge"
	case strings.Contains(ua, "opr") || strings.Contains(ua, "opera"):
		info.Browser = "opera"
	}

	// iOS and Android agents also contain "mac os x" and "linux", so the
	// more specific platforms are checked first.
	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "windows"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		info.OS = "ios"
	case strings.Contains(ua, "mac os x") || strings.Contains(ua, "macintosh"):
		info.OS = "macos"
	case strings.Contains(ua, "android"):
		info.OS = "android"
	case strings.Contains(ua, "linux"):
		info.OS = "linux"
	}

	return info
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
