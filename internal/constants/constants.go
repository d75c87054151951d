package constants

import "time"

const (
	DefaultChainLength = 5
	MinChainLength     = 3
	MaxChainLength     = 8
)

const (
	StartingLives   = 5
	MinSlotCapacity = 9
	FailRevertDelay = 1 * time.Second
	ClockTickPeriod = 1 * time.Second
)

const (
	SlotStatusUnsolved = "unsolved"
	SlotStatusSolving  = "solving"
	SlotStatusSolved   = "solved"
	SlotStatusFailed   = "failed"
)

const (
	SessionCookieName = "session_id"
)

const (
	RouteHome      = "/"
	RouteChain     = "/api/chain"
	RouteNewGame   = "/new-game"
	RouteType      = "/type"
	RouteBackspace = "/backspace"
	RouteGuess     = "/guess"
	RouteGameState = "/game-state"
	RouteHealthz   = "/healthz"
)

const (
	ErrorCodeInvalidLength = "invalid_length"
	ErrorCodeRateLimited   = "rate_limited"
	ErrorCodeGeneration    = "generation_failed"
	ErrorCodeNoSession     = "no_session"
	ErrorCodeGameOver      = "game_over"
	ErrorCodeInvalidInput  = "invalid_input"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)
