// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/benvh/wordhunt/internal/game"
)

// Config carries everything the server needs at startup. Flags and WORDHUNT_*
// environment variables feed the same fields; flags win.
type Config struct {
	Bind           string
	Port           int
	WordsDir       string
	Countdown      time.Duration
	SweepInterval  time.Duration
	IdleLimit      time.Duration
	StartedExpiry  time.Duration
	ReconnectGrace time.Duration
	Verbose        bool
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	for name, d := range map[string]time.Duration{
		"countdown":       c.Countdown,
		"sweep-interval":  c.SweepInterval,
		"idle-limit":      c.IdleLimit,
		"started-expiry":  c.StartedExpiry,
		"reconnect-grace": c.ReconnectGrace,
	} {
		if d <= 0 {
			return errors.New("--" + name + " must be positive")
		}
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// NewViper returns a viper instance mapping flag names to WORDHUNT_* env vars.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("WORDHUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterFlags declares every config flag with its default.
func RegisterFlags(fs *pflag.FlagSet, c *Config) {
	fs.StringVarP(&c.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: WORDHUNT_BIND)")
	fs.IntVarP(&c.Port, "port", "p", 8080, "port to listen on (env: WORDHUNT_PORT)")
	fs.StringVar(&c.WordsDir, "words-dir", "", "directory of <lang>.txt word lists overriding the embedded pools (env: WORDHUNT_WORDS_DIR)")
	fs.DurationVar(&c.Countdown, "countdown", game.DefaultCountdown, "delay between start request and assignment delivery (env: WORDHUNT_COUNTDOWN)")
	fs.DurationVar(&c.SweepInterval, "sweep-interval", game.DefaultSweepInterval, "how often stale sessions are checked for eviction (env: WORDHUNT_SWEEP_INTERVAL)")
	fs.DurationVar(&c.IdleLimit, "idle-limit", game.DefaultIdleLimit, "time before games with no activity are evicted (env: WORDHUNT_IDLE_LIMIT)")
	fs.DurationVar(&c.StartedExpiry, "started-expiry", game.DefaultStartedExpiry, "time before started games are evicted (env: WORDHUNT_STARTED_EXPIRY)")
	fs.DurationVar(&c.ReconnectGrace, "reconnect-grace", game.DefaultReconnectGrace, "time a disconnected player's slot is kept for reconnection (env: WORDHUNT_RECONNECT_GRACE)")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "enable debug logging (env: WORDHUNT_VERBOSE)")
}

// BindEnv wires each flag to its environment variable, applying env values
// for flags the user didn't set on the command line.
func BindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
