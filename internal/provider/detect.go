package provider

import (
	"strings"
	"time"

	"github.com/refmatrix/refcli/internal/poll"
)

// DeviceClass distinguishes in-wallet mobile browsers from desktops.
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceDesktop DeviceClass = "desktop"
)

// Detection cadence. Mobile in-wallet browsers either expose the provider
// immediately or never will, so they get a shorter budget; desktop
// extensions may load asynchronously after initial render.
const (
	pollInterval    = 100 * time.Millisecond
	attemptsMobile  = 20
	attemptsDesktop = 50
)

var mobileMarkers = []string{
	"android", "iphone", "ipad", "ipod", "blackberry",
	"opera mini", "iemobile", "windows phone", "webos", "mobile",
}

// ClassifyDevice pattern-matches the hosting environment's user-agent
// string against known mobile substrings.
func ClassifyDevice(userAgent string) DeviceClass {
	ua := strings.ToLower(userAgent)
	for _, marker := range mobileMarkers {
		if strings.Contains(ua, marker) {
			return DeviceMobile
		}
	}
	return DeviceDesktop
}

// Source yields the injected provider once it is available.
type Source func() (Provider, bool)

// Result is the outcome of a detection run.
type Result struct {
	Available bool
	Vendor    string
	Device    DeviceClass
	Provider  Provider
}

// Detect polls the injection point every 100 ms until a provider appears or
// the device-class budget is spent (20 attempts mobile, 50 desktop).
func Detect(clock poll.Clock, source Source, userAgent string) Result {
	device := ClassifyDevice(userAgent)
	attempts := attemptsDesktop
	if device == DeviceMobile {
		attempts = attemptsMobile
	}

	var found Provider
	ok := poll.Until(clock, pollInterval, attempts, func() bool {
		p, ready := source()
		if ready {
			found = p
		}
		return ready
	})
	if !ok {
		return Result{Available: false, Device: device}
	}

	return Result{
		Available: true,
		Vendor:    VendorLabel(found.Capabilities(), device),
		Device:    device,
		Provider:  found,
	}
}
