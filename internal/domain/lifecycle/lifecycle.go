// Package lifecycle holds shared shutdown constants for long-lived
// components.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of servers and feeds.
const DefaultTimeout = 10 * time.Second
