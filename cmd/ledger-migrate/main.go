package main

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/config"
	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/db"
	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/logger"
)

const usage = "usage: ledger-migrate up | down <steps> | status"

func main() {
	cfg := config.Load()
	log, err := logger.New("ledger-migrate", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	switch os.Args[1] {
	case "up":
		version, err := db.MigrateUp(pg)
		if err != nil {
			log.Fatal("migrate up", zap.Error(err))
		}
		log.Info("migrations applied", zap.Uint("version", version))

	case "down":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		steps, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal("invalid steps", zap.String("steps", os.Args[2]))
		}
		if err := db.MigrateDown(pg, steps); err != nil {
			log.Fatal("migrate down", zap.Error(err))
		}
		log.Info("migrations rolled back", zap.Int("steps", steps))

	case "status":
		st, err := db.Status(pg)
		if err != nil {
			log.Fatal("migrate status", zap.Error(err))
		}
		log.Info("migration status",
			zap.Bool("applied", st.Applied),
			zap.Uint("version", st.Version),
			zap.Bool("dirty", st.Dirty),
		)

	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}
