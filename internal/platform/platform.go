// Package platform delivers desktop notifications through the host's
// native notification service.
package platform

import "time"

// AppName is the application name shown by notification centres.
const AppName = "ThumbMask"

// Urgency mirrors the freedesktop urgency levels.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Options configures how a notification is displayed.
type Options struct {
	// IconPath points to an image shown with the notification where the
	// platform supports it.
	IconPath string
	// Timeout is how long the notification stays visible. Zero uses the
	// default of five seconds.
	Timeout time.Duration
	Urgency Urgency
}

func (o Options) timeoutMillis() int32 {
	if o.Timeout <= 0 {
		return 5000
	}
	return int32(o.Timeout / time.Millisecond)
}
