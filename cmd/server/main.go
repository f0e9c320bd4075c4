package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-club/internal/config"
	"github.com/iliyamo/movie-club/internal/database"
	"github.com/iliyamo/movie-club/internal/handler"
	"github.com/iliyamo/movie-club/internal/middleware"
	"github.com/iliyamo/movie-club/internal/queue"
	"github.com/iliyamo/movie-club/internal/repository"
	"github.com/iliyamo/movie-club/internal/router"
	"github.com/iliyamo/movie-club/internal/service"
	"github.com/iliyamo/movie-club/internal/tmdb"
)

// janitorInterval is how often expired revocations and cached responses
// are swept.
const janitorInterval = time.Hour

func main() {
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s: %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		e.Logger.Fatal(err)
	}
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			e.Logger.Fatal(err)
		}
		e.Logger.Info("schema migrated")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		e.Logger.Warn("redis unavailable: in-process response cache, no rate limiting")
	}
	cacheStore := middleware.NewCacheStore(rdb)

	users := repository.NewUserRepo(db)
	rooms := repository.NewRoomRepo(db)
	ratings := repository.NewRatingRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	tokens := repository.NewTokenRepo(db)

	events := service.NewPublisher(cfg.AMQPURL)
	authSvc := &service.AuthService{
		Users:      users,
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}
	if cfg.TMDBAPIKey == "" {
		e.Logger.Warn("TMDB_API_KEY is not set: movie endpoints will answer 500")
	}
	movies := tmdb.New(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.TMDBLanguage)

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc, tokens, events),
		Users:     handler.NewUserHandler(users, ratings),
		Rooms:     handler.NewRoomHandler(rooms, events),
		Ratings:   handler.NewRatingHandler(ratings, events),
		Favorites: handler.NewFavoriteHandler(favorites),
		Movies:    handler.NewMovieHandler(movies),
	}, db, router.Options{
		Auth:      middleware.Auth{Secret: cfg.JWTSecret, Users: users, Revoked: tokens},
		Cache:     config.LoadCacheConfig(),
		CacheData: cacheStore,
		RateLimit: middleware.RateLimit(config.LoadRateLimitConfig(), rdb),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumerDone := make(chan struct{})
	if cfg.AMQPURL != "" {
		go func() {
			defer close(consumerDone)
			queue.StartActivityConsumer(ctx, cfg.AMQPURL, queue.DefaultActivityLog)
		}()
	} else {
		close(consumerDone)
		e.Logger.Info("AMQP_URL not set: activity events disabled")
	}
	go runJanitor(ctx, tokens, cacheStore)

	go func() {
		addr := ":" + cfg.Port
		e.Logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	e.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("http shutdown: %v", err)
	}
	<-consumerDone
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := db.Close(); err != nil {
		e.Logger.Errorf("close db: %v", err)
	}
}

// runJanitor periodically drops revocations of tokens that expired anyway
// and, without Redis, stale cached responses.
func runJanitor(ctx context.Context, tokens *repository.TokenRepo, store middleware.CacheStore) {
	t := time.NewTicker(janitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		purgeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n, err := tokens.PurgeExpired(purgeCtx)
		cancel()
		if err != nil {
			log.Warnf("janitor: purge revoked tokens: %v", err)
		} else if n > 0 {
			log.Infof("janitor: purged %d revoked tokens", n)
		}
		if mem, ok := store.(*middleware.MemoryStore); ok {
			mem.Sweep()
		}
	}
}

func logLevel(s string) log.Lvl {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return log.DEBUG
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	}
	return log.INFO
}
