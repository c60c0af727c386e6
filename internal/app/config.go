package app

import (
	"time"

	"github.com/AlvinoWJ/midiland-dev/internal/chat"
)

// Config contains all runtime configuration loaded from environment
// variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Widget gateway policy.
	OriginRequired bool
	AllowedOrigins []string
	DevInsecure    bool

	WSWriteTimeout    time.Duration
	WSReadIdleTimeout time.Duration
	WSSendQueue       int
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	RateEvents        int
	RateWindow        time.Duration

	// Conversation engine tuning.
	TypingDelay      time.Duration
	TransportLatency time.Duration
	// SimulateFailure forces every simulated delivery to fail; used to
	// exercise the failed/retry path end to end.
	SimulateFailure bool

	// ResponderRules optionally points at a YAML reply table that replaces
	// the built-in one.
	ResponderRules string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("MIDICHAT_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("MIDICHAT_LOG_LEVEL", "info"),
		LogFormat: EnvString("MIDICHAT_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("MIDICHAT_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("MIDICHAT_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("MIDICHAT_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("MIDICHAT_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("MIDICHAT_HTTP_MAX_HEADER_BYTES", 1<<20),

		OriginRequired: EnvBool("MIDICHAT_WS_ORIGIN_REQUIRED", true),
		AllowedOrigins: EnvCSV("MIDICHAT_WS_ALLOWED_ORIGINS", "http://localhost,http://127.0.0.1"),
		DevInsecure:    EnvBool("MIDICHAT_WS_DEV_INSECURE", false),

		WSWriteTimeout:    EnvDuration("MIDICHAT_WS_WRITE_TIMEOUT", 5*time.Second),
		WSReadIdleTimeout: EnvDuration("MIDICHAT_WS_READ_IDLE_TIMEOUT", 2*time.Minute),
		WSSendQueue:       EnvInt("MIDICHAT_WS_SEND_QUEUE", 256),
		HeartbeatInterval: EnvDuration("MIDICHAT_WS_HEARTBEAT_INTERVAL", 25*time.Second),
		HeartbeatTimeout:  EnvDuration("MIDICHAT_WS_HEARTBEAT_TIMEOUT", 5*time.Second),
		RateEvents:        EnvInt("MIDICHAT_WS_RATE_EVENTS", 60),
		RateWindow:        EnvDuration("MIDICHAT_WS_RATE_WINDOW", 10*time.Second),

		TypingDelay:      EnvDuration("MIDICHAT_TYPING_DELAY", chat.DefaultTypingDelay),
		TransportLatency: EnvDuration("MIDICHAT_TRANSPORT_LATENCY", chat.DefaultTransportLatency),
		SimulateFailure:  EnvBool("MIDICHAT_TRANSPORT_SIMULATE_FAILURE", false),

		ResponderRules: EnvString("MIDICHAT_RESPONDER_RULES", ""),
	}
}
