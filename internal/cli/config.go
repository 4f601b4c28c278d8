package cli

import (
	"os"
	"strconv"

	"github.com/alexanderramin/ridewait/internal/dataset"
	"github.com/alexanderramin/ridewait/internal/db"
	"github.com/alexanderramin/ridewait/internal/server"
)

// DefaultDataPath is where the wait-time CSV lives relative to the working
// directory. The repository ships a two-year sample there.
const DefaultDataPath = "data/spaceship_earth.csv"

// DefaultPromptMaxTurns bounds how many completed turns go into a prompt.
const DefaultPromptMaxTurns = 12

// Config holds process settings shared by every command.
type Config struct {
	DataPath       string
	Addr           string
	DBPath         string
	Ride           string
	Debug          bool
	PromptMaxTurns int
}

func DefaultConfig() Config {
	return Config{
		DataPath:       DefaultDataPath,
		Addr:           server.DefaultAddr,
		DBPath:         db.MemoryPath,
		Ride:           dataset.DefaultRide,
		PromptMaxTurns: DefaultPromptMaxTurns,
	}
}

// LoadConfig reads configuration from environment variables, falling back to
// defaults for any unset values. Flags override the result.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RIDEWAIT_DATA"); v != "" {
		cfg.DataPath = v
	}
	if v := os.Getenv("RIDEWAIT_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("RIDEWAIT_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("RIDEWAIT_RIDE"); v != "" {
		cfg.Ride = v
	}
	if v := os.Getenv("RIDEWAIT_DEBUG"); v != "" {
		cfg.Debug, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("RIDEWAIT_PROMPT_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.PromptMaxTurns = n
		}
	}

	return cfg
}
