package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vortcheno/internal/constants"
	"vortcheno/internal/models"
)

func validateConfig(cfg *models.Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", cfg.Port)
	}
	if cfg.MinChainLength < 3 {
		return fmt.Errorf("min-length must be at least 3, got %d", cfg.MinChainLength)
	}
	if cfg.MaxChainLength > 20 {
		return fmt.Errorf("max-length must be at most 20, got %d", cfg.MaxChainLength)
	}
	if cfg.MinChainLength > cfg.MaxChainLength {
		return fmt.Errorf("min-length %d exceeds max-length %d", cfg.MinChainLength, cfg.MaxChainLength)
	}
	if cfg.DefaultChainLength < cfg.MinChainLength || cfg.DefaultChainLength > cfg.MaxChainLength {
		return fmt.Errorf("default-length %d outside [%d, %d]", cfg.DefaultChainLength, cfg.MinChainLength, cfg.MaxChainLength)
	}
	if cfg.RateMax < 1 {
		return errors.New("rate-max must be positive")
	}
	if cfg.RateWindow <= 0 {
		return errors.New("rate-window must be positive")
	}
	return nil
}

func newCmd(cfg *models.Config, run func(*models.Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("VORTCHENO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "vortcheno",
		Short:         "A word-chain puzzle game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfig(cfg); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: VORTCHENO_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: VORTCHENO_PORT)")
	fs.IntVar(&cfg.MinChainLength, "min-length", constants.MinChainLength, "shortest chain a caller may request (env: VORTCHENO_MIN_LENGTH)")
	fs.IntVar(&cfg.MaxChainLength, "max-length", constants.MaxChainLength, "longest chain a caller may request (env: VORTCHENO_MAX_LENGTH)")
	fs.IntVar(&cfg.DefaultChainLength, "default-length", constants.DefaultChainLength, "chain length when the request omits one (env: VORTCHENO_DEFAULT_LENGTH)")
	fs.DurationVar(&cfg.RateWindow, "rate-window", 15*time.Minute, "generation quota window (env: VORTCHENO_RATE_WINDOW)")
	fs.IntVar(&cfg.RateMax, "rate-max", 10, "generation requests allowed per window (env: VORTCHENO_RATE_MAX)")
	fs.DurationVar(&cfg.BlockGrace, "block-grace", 15*time.Minute, "extra age before quota records are swept (env: VORTCHENO_BLOCK_GRACE)")
	fs.IntVar(&cfg.Lives, "lives", constants.StartingLives, "lives per game (env: VORTCHENO_LIVES)")
	fs.IntVar(&cfg.SlotCapacityFloor, "slot-capacity", constants.MinSlotCapacity, "minimum input cells per word slot (env: VORTCHENO_SLOT_CAPACITY)")
	fs.DurationVar(&cfg.FailRevertDelay, "fail-revert-delay", constants.FailRevertDelay, "how long a failed slot stays red (env: VORTCHENO_FAIL_REVERT_DELAY)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 3*time.Hour, "time before idle game sessions are evicted (env: VORTCHENO_SESSION_TTL)")
	fs.DurationVar(&cfg.CookieMaxAge, "cookie-max-age", 2*time.Hour, "session cookie lifetime (env: VORTCHENO_COOKIE_MAX_AGE)")
	fs.DurationVar(&cfg.StaticCacheAge, "static-cache-age", 5*time.Minute, "cache lifetime for static assets (env: VORTCHENO_STATIC_CACHE_AGE)")
	fs.IntVar(&cfg.FloodRPS, "flood-rps", 5, "per-IP flood guard requests per second (env: VORTCHENO_FLOOD_RPS)")
	fs.IntVar(&cfg.FloodBurst, "flood-burst", 10, "per-IP flood guard burst (env: VORTCHENO_FLOOD_BURST)")
	fs.DurationVar(&cfg.LimiterTTL, "limiter-ttl", 1*time.Hour, "time before idle flood limiters are evicted (env: VORTCHENO_LIMITER_TTL)")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", "gpt-4o-mini", "chat model used for chain generation (env: VORTCHENO_OPENAI_MODEL)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: VORTCHENO_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}
