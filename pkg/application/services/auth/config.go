package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"
)

// Config holds token and login throttling settings. The token fields come
// from the environment; the throttling fields are set from CLI flags.
type Config struct {
	Secret   string        `env:"VANTAX_JWT_SECRET"`
	TokenTTL time.Duration `env:"VANTAX_TOKEN_TTL" envDefault:"12h"`
	Issuer   string        `env:"VANTAX_JWT_ISSUER" envDefault:"vantax"`

	// LoginRate is the sustained number of login attempts per second
	// allowed for one company/email pair
	LoginRate  rate.Limit
	LoginBurst int

	// SecretGenerated is set when no secret was configured and a random
	// one was created for this process
	SecretGenerated bool
}

// LoadConfig parses the environment. Without VANTAX_JWT_SECRET a random
// secret is generated, which invalidates tokens on every restart.
func LoadConfig() (Config, error) {
	cfg := Config{
		LoginRate:  rate.Limit(1),
		LoginBurst: 5,
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return Config{}, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.Secret = hex.EncodeToString(buf)
		cfg.SecretGenerated = true
	}
	return cfg, nil
}
