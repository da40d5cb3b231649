// Package analytics derives visitor pseudo-identities from request
// metadata and records profile view and project click events.
package analytics

import (
	"encoding/base64"
	"strings"
)

// Device type classifications.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// Browser type classifications.
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserEdge    = "edge"
	BrowserOpera   = "opera"
	BrowserOther   = "other"
	BrowserUnknown = "unknown"
)

// Fingerprint derives a stable visitor pseudo-identity from client IP
// and user agent. It is compared only for equality: shared IPs and
// agents collide by design, and it is not an authenticated identity.
func Fingerprint(ip, userAgent string) string {
	return base64.StdEncoding.EncodeToString([]byte(ip + "|" + userAgent))
}

var mobileMarkers = []string{"mobile", "iphone", "ipod", "android", "blackberry", "windows phone"}

var tabletMarkers = []string{"tablet", "ipad", "kindle", "silk"}

// DeviceType classifies a user agent as mobile, tablet, or desktop.
// Markers are checked in order mobile then tablet; anything else with a
// non-empty agent is desktop.
func DeviceType(userAgent string) string {
	if userAgent == "" {
		return DeviceUnknown
	}
	ua := strings.ToLower(userAgent)
	for _, m := range mobileMarkers {
		if strings.Contains(ua, m) {
			return DeviceMobile
		}
	}
	for _, m := range tabletMarkers {
		if strings.Contains(ua, m) {
			return DeviceTablet
		}
	}
	return DeviceDesktop
}

// browserPriority maps marker substrings to browser names in match
// order. Edge and Opera ship Chrome's token, so they are checked first;
// Chrome ships Safari's token, so Safari comes after Chrome.
var browserPriority = []struct {
	marker  string
	browser string
}{
	{"edg", BrowserEdge},
	{"opr", BrowserOpera},
	{"opera", BrowserOpera},
	{"chrome", BrowserChrome},
	{"crios", BrowserChrome},
	{"firefox", BrowserFirefox},
	{"fxios", BrowserFirefox},
	{"safari", BrowserSafari},
}

// BrowserType classifies a user agent by the first matching marker in a
// fixed priority list.
func BrowserType(userAgent string) string {
	if userAgent == "" {
		return BrowserUnknown
	}
	ua := strings.ToLower(userAgent)
	for _, p := range browserPriority {
		if strings.Contains(ua, p.marker) {
			return p.browser
		}
	}
	return BrowserOther
}
