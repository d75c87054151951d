package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	"vortcheno/internal/constants"
	"vortcheno/internal/game"
	"vortcheno/internal/generator"
	"vortcheno/internal/handlers"
	"vortcheno/internal/limiter"
	"vortcheno/internal/middleware"
	"vortcheno/internal/models"
	"vortcheno/internal/session"
	"vortcheno/internal/util"
)

func main() {
	_ = godotenv.Load()

	cfg := &models.Config{}
	if err := newCmd(cfg, run).Execute(); err != nil {
		util.LogFatal("%v", err)
	}
}

func run(cfg *models.Config) error {
	cfg.IsProduction = os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	util.LogInfo("Starting Vortcheno in %s mode", map[bool]string{true: "production", false: "development"}[cfg.IsProduction])

	gen := generator.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if cfg.OpenAIAPIKey == "" {
		util.LogWarn("OPENAI_API_KEY is not set; chain generation will fail until it is")
	}

	app := &models.App{
		Config:     *cfg,
		Chains:     generator.NewService(gen, cfg.MinChainLength, cfg.MaxChainLength),
		Quota:      limiter.NewMemoryStore(cfg.RateWindow, cfg.RateMax, cfg.BlockGrace),
		Sessions:   make(map[string]*game.Session),
		LimiterMap: make(map[string]*models.RateLimiterWithTime),
		StartTime:  time.Now(),
	}

	router := buildRouter(app)
	startCleanupRoutines(app)
	return startServer(app, router)
}

func buildRouter(app *models.App) *gin.Engine {
	if app.Config.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	router.Use(middleware.CSRF(app))
	router.Use(middleware.ValidateCSRF())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		util.LogWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(func(c *gin.Context) {
		applyCacheHeaders(app, c)
	})

	if util.DirExists("static") {
		router.Static("/static", "./static")
		router.StaticFile(constants.RouteHome, "./static/index.html")
	}

	quota := limiter.Middleware(app.Quota)
	flood := middleware.FloodGuard(app)

	router.GET(constants.RouteChain, quota, func(c *gin.Context) { handlers.ChainHandler(app, c) })
	router.POST(constants.RouteNewGame, flood, quota, func(c *gin.Context) { handlers.NewGameHandler(app, c) })
	router.POST(constants.RouteType, flood, func(c *gin.Context) { handlers.TypeHandler(app, c) })
	router.POST(constants.RouteBackspace, flood, func(c *gin.Context) { handlers.BackspaceHandler(app, c) })
	router.POST(constants.RouteGuess, flood, func(c *gin.Context) { handlers.GuessHandler(app, c) })
	router.GET(constants.RouteGameState, func(c *gin.Context) { handlers.GameStateHandler(app, c) })
	router.GET(constants.RouteHealthz, func(c *gin.Context) { handlers.HealthzHandler(app, c) })

	return router
}

func applyCacheHeaders(app *models.App, c *gin.Context) {
	if app.Config.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.Config.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}

func startCleanupRoutines(app *models.App) {
	session.StartSessionCleanup(app)

	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			middleware.CleanupStaleLimiters(app)
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			if removed := app.Quota.SweepExpired(time.Now()); removed > 0 {
				util.LogInfo("Swept %d expired quota records", removed)
			}
		}
	}()

	util.LogInfo("Started cleanup routines for sessions, limiters, and quota records")
}

func startServer(app *models.App, router *gin.Engine) error {
	addr := fmt.Sprintf("%s:%d", app.Config.Bind, app.Config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		util.LogInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			util.LogWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	util.LogInfo("Server starting on http://%s", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	<-idleConnsClosed
	util.LogInfo("Server shutdown complete")
	return nil
}
