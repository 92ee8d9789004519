package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"loremaker/internal/auth"
	"loremaker/internal/characters"
	"loremaker/internal/loremaker"
	"loremaker/internal/snapshot"
	synchub "loremaker/internal/sync"
	"loremaker/pkg/database"
	"loremaker/pkg/logger"
	"loremaker/pkg/utils"
)

func main() {
	_ = utils.LoadDotEnv(".env")
	cfg := utils.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	dbCfg := database.DefaultConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		log.Fatal("db open failed", "path", dbCfg.Path, "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("db migrate failed", "error", err)
	}

	if cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub, log))
	tcpSrv := synchub.NewServer(cfg.SyncAddr, hub, log)

	fetcher := loremaker.NewFetcher(cfg, log)
	lib := characters.NewLibrary(fetcher, hub, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path, "sheet": cfg.SheetID})
	})
	router.GET("/ready", readyHandler(db, hub, lib))

	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}

	h := characters.NewHandler(lib, snapshot.NewRepo(db), cfg.CacheTTL, cfg.CacheSWR, log)
	h.RegisterRoutes(router.Group("/characters"))
	h.RegisterAdminRoutes(router.Group("/admin", auth.AuthMiddleware(tokenSvc, auth.RoleAdmin)))

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tcpSrv.Run()
	})
	g.Go(func() error {
		log.Info("http api listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var errs []error
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := tcpSrv.Close(); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("servers stopped")
}

func readyHandler(db *sql.DB, hub *synchub.Hub, lib *characters.Library) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		}
		if b := lib.Current(); b != nil {
			body["source"] = b.Source
			body["characters"] = len(b.Characters)
			body["loaded_at"] = b.LoadedAt
		}

		if err := db.PingContext(ctx); err != nil {
			body["status"] = "not_ready"
			body["db_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		body["db"] = "ok"
		c.JSON(http.StatusOK, body)
	}
}

// requestLogger logs one line per request, including the 499s written when a
// client goes away mid-load.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
