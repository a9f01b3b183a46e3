package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"novelbible/internal/bot"
	"novelbible/internal/chat"
	"novelbible/internal/novel"
	"novelbible/internal/render"
	"novelbible/internal/session"
	"novelbible/internal/terms"
	"novelbible/pkg/database"
	"novelbible/pkg/utils"
)

func main() {
	botCfg := utils.LoadBotConfig()
	dbCfg := database.DefaultConfig()
	dbCfg.ResourcePath = filepath.Join(botCfg.ResourceDir, "webnovel.db")

	// seed before open: opening first would create an empty db at the
	// runtime path and the bundled catalog would never be installed
	var seeder database.Seeder
	if err := seeder.Seed(dbCfg); err != nil {
		log.Printf("dataset seed failed, queries will come back empty: %v", err)
	}

	db := database.MustOpen(dbCfg)
	defer db.Close()

	termIndex := terms.Load(botCfg.ResourceDir, log.Default())

	icons, err := render.LoadIconMap(filepath.Join(botCfg.ResourceDir, "tag_emoji.json"))
	if err != nil {
		log.Printf("tag icon map unavailable, using default bullet: %v", err)
		icons = render.NewIconMap()
	} else {
		log.Printf("loaded %d tag icons", icons.Len())
	}

	renderer := render.NewRenderer(icons)
	renderer.MaxEntryLen = botCfg.MaxReviewLength
	renderer.MaxBatchChars = botCfg.MaxBatchChars

	repo := novel.NewRepo(db)
	sessions := session.NewStore(session.DefaultTTL, session.DefaultCapacity)
	dispatcher := bot.NewDispatcher(repo, sessions, renderer, termIndex, botCfg)

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	// chat gateway
	hub := chat.NewHub(0)
	router.GET("/ws", chat.WSHandler(hub, dispatcher))
	router.GET("/history", chat.HistoryHandler(hub))

	// command endpoint for non-websocket hosts
	botHandler := bot.NewHandler(dispatcher)
	botHandler.RegisterRoutes(router.Group("/commands"))

	// REST view over the catalog
	novelHandler := novel.NewHandler(repo)
	novelHandler.RegisterRoutes(router.Group("/novels"))

	// periodic session cleanup; lookups already ignore expired state
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessions.Sweep()
			case <-sweepDone:
				return
			}
		}
	}()

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Println("bot server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	close(sweepDone)

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
