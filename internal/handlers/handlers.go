package handlers

import (
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"vortcheno/internal/constants"
	"vortcheno/internal/game"
	"vortcheno/internal/generator"
	"vortcheno/internal/models"
	"vortcheno/internal/session"
	"vortcheno/internal/util"
)

type typeRequest struct {
	Char string `json:"char" binding:"required"`
}

type guessRequest struct {
	Index *int `json:"index" binding:"required"`
}

// parseLength reads the length query parameter, defaulting when absent.
// Non-numeric values are a validation error; bounds are enforced by the
// generation service itself.
func parseLength(app *models.App, c *gin.Context) (int, bool) {
	raw := c.Query("length")
	if raw == "" {
		return app.Config.DefaultChainLength, true
	}
	length, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return length, true
}

func generationStatus(err error) (int, gin.H) {
	if errors.Is(err, generator.ErrLengthOutOfBounds) {
		return http.StatusBadRequest, gin.H{
			"error":   constants.ErrorCodeInvalidLength,
			"message": "Requested chain length is out of bounds.",
		}
	}
	// Upstream and parse failures alike surface as a generic retry-now
	// message; internal detail never crosses the boundary.
	return http.StatusInternalServerError, gin.H{
		"error":   constants.ErrorCodeGeneration,
		"message": "Could not generate a word chain. Please try again.",
	}
}

// ChainHandler serves the raw generation endpoint: a chain of exactly
// `length` uppercase words, with no session side effects.
func ChainHandler(app *models.App, c *gin.Context) {
	length, ok := parseLength(app, c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   constants.ErrorCodeInvalidLength,
			"message": "length must be an integer",
		})
		return
	}

	words, err := app.Chains.Generate(c.Request.Context(), length)
	if err != nil {
		status, body := generationStatus(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{"words": words})
}

// NewGameHandler runs the full flow: generate a chain, initialize the
// puzzle session under the caller's cookie, start its clock, and return
// the initial snapshot. Any previous game under the same cookie is torn
// down first.
func NewGameHandler(app *models.App, c *gin.Context) {
	sessionID := session.GetOrCreateSession(app, c)

	length, ok := parseLength(app, c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   constants.ErrorCodeInvalidLength,
			"message": "length must be an integer",
		})
		return
	}

	words, err := app.Chains.Generate(c.Request.Context(), length)
	if err != nil {
		status, body := generationStatus(err)
		c.JSON(status, body)
		return
	}

	sess, err := game.NewSession(words, game.Options{
		Lives:         app.Config.Lives,
		CapacityFloor: app.Config.SlotCapacityFloor,
		RevertDelay:   app.Config.FailRevertDelay,
	})
	if err != nil {
		util.LogWarn("Session init rejected a generated chain: %v", err)
		status, body := generationStatus(generator.ErrBadChain)
		c.JSON(status, body)
		return
	}

	session.Put(app, sessionID, sess)
	sess.StartClock()
	util.LogInfo("New game for session %s: %d-word chain", sessionID, length)

	c.JSON(http.StatusOK, sess.Snapshot())
}

func requireSession(app *models.App, c *gin.Context) (*game.Session, bool) {
	sessionID, err := c.Cookie(constants.SessionCookieName)
	if err != nil || sessionID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrorCodeNoSession})
		return nil, false
	}
	sess, ok := session.Get(app, sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrorCodeNoSession})
		return nil, false
	}
	return sess, true
}

// TypeHandler forwards a single keystroke into the active slot.
func TypeHandler(app *models.App, c *gin.Context) {
	sess, ok := requireSession(app, c)
	if !ok {
		return
	}
	var req typeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrorCodeInvalidInput})
		return
	}
	sess.TypeChar(req.Char)
	c.JSON(http.StatusOK, sess.Snapshot())
}

// BackspaceHandler erases the character before the cursor, never a hint.
func BackspaceHandler(app *models.App, c *gin.Context) {
	sess, ok := requireSession(app, c)
	if !ok {
		return
	}
	sess.Backspace()
	c.JSON(http.StatusOK, sess.Snapshot())
}

// GuessHandler submits the slot at the given index.
func GuessHandler(app *models.App, c *gin.Context) {
	sess, ok := requireSession(app, c)
	if !ok {
		return
	}
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrorCodeInvalidInput})
		return
	}
	if sess.IsOver() {
		util.LogWarn("Session attempted guess on finished game")
		c.JSON(http.StatusConflict, gin.H{"error": constants.ErrorCodeGameOver})
		return
	}
	sess.Submit(*req.Index)
	c.JSON(http.StatusOK, sess.Snapshot())
}

func GameStateHandler(app *models.App, c *gin.Context) {
	sess, ok := requireSession(app, c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func HealthzHandler(app *models.App, c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(app.StartTime)

	app.SessionMutex.RLock()
	sessionCount := len(app.Sessions)
	app.SessionMutex.RUnlock()

	app.LimiterMutex.RLock()
	limiterCount := len(app.LimiterMap)
	app.LimiterMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"env":             map[bool]string{true: "production", false: "development"}[app.Config.IsProduction],
		"active_sessions": sessionCount,
		"active_limiters": limiterCount,
		"quota_records":   app.Quota.Len(),
		"memory_alloc_mb": m.Alloc / 1024 / 1024,
		"memory_sys_mb":   m.Sys / 1024 / 1024,
		"memory_gc_count": m.NumGC,
		"uptime":          util.FormatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
