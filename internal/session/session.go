package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vortcheno/internal/constants"
	"vortcheno/internal/game"
	"vortcheno/internal/models"
	"vortcheno/internal/util"
)

func GetOrCreateSession(app *models.App, c *gin.Context) string {
	sessionID, err := c.Cookie(constants.SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.Config.IsProduction
		c.SetCookie(constants.SessionCookieName, sessionID, int(app.Config.CookieMaxAge.Seconds()), "/", "", secure, true)
		util.LogInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// Get returns the live game for a session, if one exists. Unlike a
// dictionary-backed game, a chain game cannot be conjured on demand;
// creation goes through the generation flow in the new-game handler.
func Get(app *models.App, sessionID string) (*game.Session, bool) {
	app.SessionMutex.RLock()
	defer app.SessionMutex.RUnlock()
	sess, ok := app.Sessions[sessionID]
	return sess, ok
}

// Put registers a freshly initialized game, tearing down any session it
// replaces so superseded clocks and revert timers stop mutating state.
func Put(app *models.App, sessionID string, sess *game.Session) {
	app.SessionMutex.Lock()
	old, existed := app.Sessions[sessionID]
	app.Sessions[sessionID] = sess
	app.SessionMutex.Unlock()

	if existed {
		old.Teardown()
		util.LogInfo("Replaced game state for session: %s", sessionID)
	} else {
		util.LogInfo("Registered game state for session: %s", sessionID)
	}
}

func Delete(app *models.App, sessionID string) {
	app.SessionMutex.Lock()
	sess, ok := app.Sessions[sessionID]
	delete(app.Sessions, sessionID)
	app.SessionMutex.Unlock()

	if ok {
		sess.Teardown()
		util.LogInfo("Cleared session data for: %s", sessionID)
	}
}

func CleanupExpiredSessions(app *models.App) {
	now := time.Now()

	app.SessionMutex.Lock()
	var expired []*game.Session
	for sessionID, sess := range app.Sessions {
		if now.Sub(sess.LastAccess()) > app.Config.SessionTTL {
			delete(app.Sessions, sessionID)
			expired = append(expired, sess)
		}
	}
	app.SessionMutex.Unlock()

	for _, sess := range expired {
		sess.Teardown()
	}
	if len(expired) > 0 {
		util.LogInfo("Cleaned up %d expired sessions", len(expired))
	}
}

func StartSessionCleanup(app *models.App) {
	ticker := time.NewTicker(10 * time.Minute)
	go func() {
		defer ticker.Stop()
		for range ticker.C {
			CleanupExpiredSessions(app)
		}
	}()
	util.LogInfo("Started session cleanup goroutine")
}
