// Command sevensd is a headless room daemon. It watches Sevens rooms on the
// shared Redis store and enforces the configured per-turn timeout: a player
// who sits past the deadline gets a move made on their behalf through the
// same validated path any client uses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sevens/internal/config"
	"sevens/internal/ports/redisstore"
	gamesync "sevens/internal/sync"
)

func main() {
	configPath := flag.String("config", "sevens.yaml", "path to the YAML config file")
	rooms := flag.String("rooms", "", "comma-separated room codes to watch")
	flag.Parse()

	if err := run(*configPath, *rooms); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, roomsArg string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	roomCodes := splitRooms(roomsArg)
	if len(roomCodes) == 0 {
		return errors.New("no rooms given, use -rooms")
	}
	if cfg.Game.TurnTimeoutSeconds <= 0 {
		return errors.New("turn timeout is disabled in config")
	}
	timeout := time.Duration(cfg.Game.TurnTimeoutSeconds) * time.Second

	opener, err := cfg.Game.Opener()
	if err != nil {
		return err
	}

	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	log, err := zcfg.Build()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer func() { _ = client.Close() }()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	store := redisstore.New(client, cfg.Redis.KeyPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("sevensd starting",
		zap.Strings("rooms", roomCodes),
		zap.Duration("turnTimeout", timeout),
		zap.String("redis", cfg.Redis.Addr))

	var wg sync.WaitGroup
	for _, room := range roomCodes {
		wg.Add(1)
		go func(room string) {
			defer wg.Done()
			w := gamesync.NewWatchdog(store, log, room, opener, timeout)
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("watchdog stopped", zap.String("room", room), zap.Error(err))
			}
		}(room)
	}
	wg.Wait()

	log.Info("sevensd stopped")
	return nil
}

func splitRooms(arg string) []string {
	var out []string
	for _, room := range strings.Split(arg, ",") {
		if room = strings.TrimSpace(room); room != "" {
			out = append(out, room)
		}
	}
	return out
}
