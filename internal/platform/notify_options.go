// Package platform delivers desktop notifications through the host OS.
package platform

import "time"

// AppName identifies the sender to the notification service.
const AppName = "inkboard"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file shown with the
	// notification where supported.
	IconPath string
	// Timeout is how long the notification stays up; zero leaves it to the
	// server.
	Timeout time.Duration
}
