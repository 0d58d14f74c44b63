// Package app wires the matching engine's HTTP server: configuration,
// database, cache, the domain Orchestrator/Arbiter, monitoring, and the
// gin router, and drives its startup and graceful shutdown.
package app

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/benidevo/mentormatch/internal/api"
	"github.com/benidevo/mentormatch/internal/cache"
	cohortrepo "github.com/benidevo/mentormatch/internal/cohort/repository"
	"github.com/benidevo/mentormatch/internal/common/logger"
	"github.com/benidevo/mentormatch/internal/config"
	"github.com/benidevo/mentormatch/internal/match"
	matchrepo "github.com/benidevo/mentormatch/internal/match/repository"
	"github.com/benidevo/mentormatch/internal/monitoring"
	"github.com/benidevo/mentormatch/internal/storage/sqlite"
)

// App holds the process-lifetime state of the running matching engine.
type App struct {
	config  config.Settings
	router  *gin.Engine
	db      *sql.DB
	cache   cache.Cache
	monitor *monitoring.Monitor
	server  *http.Server
	done    chan os.Signal
}

// New creates an App with a bare gin.Engine and CORS configured from cfg.
// Routes and dependencies are wired in Setup.
func New(cfg config.Settings) *App {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowCredentials = cfg.CORSAllowCredentials
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	return &App{
		config: cfg,
		router: router,
		done:   make(chan os.Signal, 1),
	}
}

// Setup initializes logging, the database, cache, monitoring, and routes.
func (a *App) Setup() error {
	logger.Initialize(a.config.IsDevelopment, a.config.LogLevel)
	log.Info().Msg("starting matching engine setup")

	if err := a.setupDependencies(); err != nil {
		log.Error().Err(err).Msg("failed to set up dependencies")
		return err
	}

	a.setupRoutes()

	log.Info().Msg("matching engine setup complete")
	return nil
}

// Run performs Setup, starts the HTTP server in a goroutine, and arranges
// for WaitForShutdown to catch interrupt/terminate signals.
func (a *App) Run() error {
	if err := a.Setup(); err != nil {
		return err
	}

	a.server = &http.Server{
		Addr:    a.config.ServerPort,
		Handler: a.router,
	}

	signal.Notify(a.done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", a.config.ServerPort).Msg("starting server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("error starting server")
		}
	}()

	return nil
}

// WaitForShutdown blocks until an interrupt/terminate signal arrives,
// then shuts the server, database, and cache down within ten seconds.
func (a *App) WaitForShutdown() {
	<-a.done
	log.Info().Msg("received shutdown signal, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}

	log.Info().Msg("shut down gracefully")
}

// Shutdown stops the server and closes the database, cache, and monitor.
func (a *App) Shutdown(ctx context.Context) error {
	var err error

	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}
	if a.monitor != nil {
		if shutdownErr := a.monitor.Shutdown(ctx); err == nil {
			err = shutdownErr
		}
	}
	if a.db != nil {
		if dbErr := a.db.Close(); err == nil {
			err = dbErr
		}
	}
	if a.cache != nil {
		if cacheErr := a.cache.Close(); err == nil {
			err = cacheErr
		}
	}

	a.server = nil
	a.db = nil
	a.cache = nil
	a.monitor = nil

	return err
}

func (a *App) setupDependencies() error {
	db, err := sqlite.Open(a.config.DBConnectionString, a.config.DBMaxOpenConns, a.config.DBMaxIdleConns)
	if err != nil {
		return err
	}
	db.SetConnMaxLifetime(a.config.DBConnMaxLifetime)
	a.db = db

	if !a.config.IsTest {
		if err := sqlite.Migrate(a.db, a.config.MigrationsDir); err != nil {
			log.Error().Err(err).Msg("database migration failed")
			return err
		}
	}

	if a.config.IsTest {
		a.cache = cache.NewNoOpCache()
	} else {
		cacheInstance, err := cache.NewBadgerCache(a.config.CachePath, logger.GetLogger("cache"))
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize cache, using no-op cache")
			a.cache = cache.NewNoOpCache()
		} else {
			a.cache = cacheInstance
		}
	}

	monitor, err := monitoring.Setup(&a.config)
	if err != nil {
		return err
	}
	a.monitor = monitor

	return nil
}

func (a *App) setupRoutes() {
	a.router.Use(recoveryMiddleware())

	if a.monitor != nil {
		a.router.Use(a.monitor.GinMiddleware())
		a.router.GET("/metrics", gin.WrapH(http.HandlerFunc(a.monitor.ServeHTTP)))
	}

	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	cohorts := cohortrepo.NewSQLiteCohortRepository(a.db)
	participants := cohortrepo.NewSQLiteParticipantRepository(a.db)
	preferences := cohortrepo.NewSQLitePreferenceRepository(a.db)
	profiles := cohortrepo.NewSQLiteProfileRepository(a.db)
	pairScores := cohortrepo.NewSQLitePairScoreRepository(a.db)

	runs := matchrepo.NewSQLiteMatchRunRepository(a.db)
	matches := matchrepo.NewSQLiteMatchRepository(a.db)
	activeRuns := matchrepo.NewSQLiteActiveMatchRunRepository(a.db)

	engineDeps := match.Dependencies{
		Cohorts:      cohorts,
		Participants: participants,
		Preferences:  preferences,
		Profiles:     profiles,
		PairScores:   pairScores,
		Runs:         runs,
		Matches:      matches,
		ActiveRuns:   activeRuns,
	}

	orchestrator := match.NewOrchestrator(engineDeps, a.config)
	arbiter := match.NewArbiter(engineDeps, orchestrator.Locks())

	apiDeps := api.Dependencies{
		Cohorts:      cohorts,
		Participants: participants,
		Preferences:  preferences,
		Profiles:     profiles,
		PairScores:   pairScores,
		Runs:         runs,
		Matches:      matches,
		ActiveRuns:   activeRuns,
		Orchestrator: orchestrator,
		Arbiter:      arbiter,
		Cache:        a.cache,
	}

	handler := api.NewHandler(apiDeps, &a.config, a.monitor)

	runRate := rateFromRunsPerMinute(a.config.RateLimitRunsPerMinute)
	api.RegisterRoutes(a.router.Group(""), handler, a.config.TokenSecret, runRate)

	a.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

func rateFromRunsPerMinute(perMinute int) string {
	if perMinute <= 0 {
		perMinute = 10
	}
	return strconv.Itoa(perMinute) + "-M"
}

func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("recovered from panic")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				c.Abort()
			}
		}()
		c.Next()
	}
}
