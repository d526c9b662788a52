package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_GATEWAY_URL points at a live chat gateway; suites skip when empty.
	GatewayURL string `envconfig:"E2E_GATEWAY_URL"`
	APIBaseURL string `envconfig:"E2E_API_BASE_URL"`
	Token      string `envconfig:"E2E_TOKEN"`
	SessionID  string `envconfig:"E2E_SESSION_ID"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
