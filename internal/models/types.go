package models

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"vortcheno/internal/game"
	"vortcheno/internal/generator"
	"vortcheno/internal/limiter"
)

// Config holds every tunable knob; populated from flags/env in config.go.
type Config struct {
	Bind string
	Port int

	MinChainLength     int
	MaxChainLength     int
	DefaultChainLength int

	RateWindow time.Duration
	RateMax    int
	BlockGrace time.Duration

	Lives             int
	SlotCapacityFloor int
	FailRevertDelay   time.Duration

	SessionTTL     time.Duration
	CookieMaxAge   time.Duration
	StaticCacheAge time.Duration

	FloodRPS   int
	FloodBurst int
	LimiterTTL time.Duration

	OpenAIModel  string
	OpenAIAPIKey string

	Verbose      bool
	IsProduction bool
}

// RateLimiterWithTime pairs a token-bucket flood limiter with its last
// access time so stale entries can be evicted.
type RateLimiterWithTime struct {
	Limiter    *rate.Limiter
	LastAccess time.Time
}

type App struct {
	Config Config

	Chains *generator.Service
	Quota  limiter.CounterStore

	Sessions     map[string]*game.Session
	SessionMutex sync.RWMutex

	LimiterMap   map[string]*RateLimiterWithTime
	LimiterMutex sync.RWMutex

	StartTime time.Time
}
