package gateway

import "time"

// Security/performance limits for widget connections.
const (
	// Max bytes per websocket frame read (hard limit).
	maxFrameBytes = 64 << 10 // 64 KiB

	// Max message text length (runes).
	maxMessageChars = 4000
)

const (
	defaultSendQueueSize = 256
	minSendQueueSize     = 32

	defaultWriteTimeout = 5 * time.Second
	defaultReadIdle     = 2 * time.Minute
	closeGrace          = 1 * time.Second

	maxPingFailures = 3

	defaultHeartbeatInterval = 25 * time.Second
	defaultHeartbeatTimeout  = 5 * time.Second

	// Per-connection rate limits (events per window). A chat widget produces
	// human-paced traffic; anything near this volume is abuse.
	defaultRateEvents = 60
	defaultRateWindow = 10 * time.Second
)
