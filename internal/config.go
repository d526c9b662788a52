package internal

import (
	"time"
)

// Config defines the environment variables shared by fairchat binaries.
type Config struct {
	GatewayURL string `env:"GATEWAY_URL,required=true"`
	APIBaseURL string `env:"API_BASE_URL,required=true"`
	LogLevel   string `env:"LOG_LEVEL,required=true"`
	Token      string `env:"FAIRCHAT_TOKEN,required=true"`
	SessionID  string `env:"SESSION_ID,required=true"`

	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT,default=10s"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT,default=5s"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=10s"`

	// CachePath enables the local badger history cache when set.
	CachePath    string `env:"CACHE_PATH"`
	HistoryLimit *int   `env:"HISTORY_LIMIT"`
	DebugPort    int    `env:"DEBUG_PORT"`
}
