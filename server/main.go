package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/xp-team/cryptopoker/server/engine"
	"github.com/xp-team/cryptopoker/server/game"
	"github.com/xp-team/cryptopoker/server/store"
	"github.com/xp-team/cryptopoker/server/telegram"
)

func mustEnv(keys ...string) {
	for _, k := range keys {
		if os.Getenv(k) == "" {
			log.Fatalf("Missing required env var %s. Put it in .env (dev) or set it on the host (prod).", k)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	var migrate bool
	for _, a := range os.Args[1:] {
		if a == "--migrate" {
			migrate = true
		}
	}

	mustEnv("DATABASE_URL")
	dsn := os.Getenv("DATABASE_URL")
	port := getenv("PORT", "8080")

	db, err := store.Open(dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close(context.Background())

	if migrate || asBool(os.Getenv("AUTO_MIGRATE")) {
		if err := store.Migrate(context.Background(), db); err != nil {
			log.Fatal(err)
		}
		log.Println("migrated")
		if migrate {
			return
		}
	}

	forced := engine.ForcedBets{
		Ante:       atoiDef(os.Getenv("ANTE"), 0),
		SmallBlind: atoiDef(os.Getenv("SMALL_BLIND"), 1),
		BigBlind:   atoiDef(os.Getenv("BIG_BLIND"), 2),
	}
	registry := game.NewRegistry(game.EngineFactory(forced))
	games := game.NewService(db, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	// chat transport is optional; without a token only REST is served
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		bot, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		interval := time.Duration(atoiDef(os.Getenv("POLL_INTERVAL_MS"), 1000)) * time.Millisecond
		poller := telegram.NewPoller(bot, telegram.NewHandler(bot, games), interval)
		go poller.Run(ctx)
		log.Printf("telegram poller started (%s tick)", interval)
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      Router(games),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	cancel()
}
