// Idlerpg runs an idle RPG world locally: characters fight, travel and
// gamble on their own every tick while you issue commands for one of them.
// Usage: idlerpg [--version] [--config <file>] [--plain] [--script <file>] [--player <id>] [--guild <id>]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mblgbs/RPG-bot-for-Discord/cli"
	"github.com/mblgbs/RPG-bot-for-Discord/config"
	"github.com/mblgbs/RPG-bot-for-Discord/content"
	"github.com/mblgbs/RPG-bot-for-Discord/engine"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/effects"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/loader"
	"github.com/mblgbs/RPG-bot-for-Discord/persist"
	"github.com/mblgbs/RPG-bot-for-Discord/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: idlerpg [--version] [--config <file>] [--plain] [--script <file>] [--player <id>] [--guild <id>]"

type options struct {
	configPath string
	scriptFile string
	player     string
	guildID    string
	plain      bool
}

func main() {
	opts, done, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	if done {
		return
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (options, bool, error) {
	opts := options{player: "player"}
	value := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		var err error
		switch args[i] {
		case "--version":
			fmt.Printf("idlerpg %s (commit %s, built %s)\n", version, commit, date)
			return opts, true, nil
		case "--plain":
			opts.plain = true
		case "--config":
			opts.configPath, err = value(&i, "--config")
		case "--script":
			opts.scriptFile, err = value(&i, "--script")
		case "--player":
			opts.player, err = value(&i, "--player")
		case "--guild":
			opts.guildID, err = value(&i, "--guild")
		default:
			err = fmt.Errorf("unknown argument %q", args[i])
		}
		if err != nil {
			return opts, false, err
		}
	}
	return opts, false, nil
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.guildID != "" {
		cfg.Game.GuildID = opts.guildID
	}
	useTUI := opts.scriptFile == "" && !opts.plain && isTerminal()

	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".idlerpg")
	if useTUI && cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(dataDir, "idlerpg.log")
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defs, err := loader.Load(cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	log.Info("content loaded",
		zap.String("world", defs.World.Name),
		zap.Int("monsters", len(defs.Monsters)),
		zap.Int("items", len(defs.Items)),
		zap.Int("maps", len(defs.Maps)))

	store, snapshots, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	seed := cfg.Game.Seed
	if snapshots != nil && cfg.Database.Snapshot != "" {
		saved, err := snapshots.LoadFile(cfg.Database.Snapshot)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		if seed == 0 {
			seed = saved
		}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info("world seeded", zap.Int64("seed", seed))

	r := rng.New(seed)
	eng := engine.New(r, content.New(defs, r), engineConfig(cfg.Game), log)
	timers := effects.NewTimers(store, nil, log)

	var (
		feed  *tui.Feed
		plain *cli.CLI
		out   engine.Messenger
	)
	if useTUI {
		feed = tui.NewFeed(256)
		out = feed
	} else {
		plain = cli.New(cfg.Game.GuildID, opts.player)
		plain.Snapshots = snapshotter(snapshots)
		plain.Seed = seed
		out = plain
	}

	runner := engine.NewRunner(eng, store, timers, out, cfg.Game.BlizzardChance, log)
	if plain != nil {
		plain.Runner = runner
	}
	if err := runner.Sweep(ctx, cfg.Game.GuildID); err != nil {
		return fmt.Errorf("sweep effects: %w", err)
	}

	if opts.scriptFile == "" && cfg.Game.TickInterval > 0 {
		go func() {
			if err := runner.Run(ctx, cfg.Game.GuildID, cfg.Game.TickInterval); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("tick loop stopped", zap.Error(err))
			}
		}()
	}

	switch {
	case opts.scriptFile != "":
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		plain.In = f
		plain.EchoInput = true
		plain.Run(ctx)
	case plain != nil:
		fmt.Printf("%s\n\n", defs.World.Name)
		plain.Run(ctx)
	default:
		err = tui.Run(ctx, runner, store, feed, tui.Options{
			GuildID:   cfg.Game.GuildID,
			Player:    opts.player,
			Seed:      seed,
			SaveDir:   filepath.Join(dataDir, "saves"),
			Snapshots: snapshotter(snapshots),
		})
		if err != nil {
			return err
		}
	}

	stop()
	if snapshots != nil && cfg.Database.Snapshot != "" {
		if err := snapshots.SaveFile(cfg.Database.Snapshot, seed); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		log.Info("snapshot written", zap.String("path", cfg.Database.Snapshot))
	}
	return nil
}

// openStore connects the configured storage. Snapshots are only available
// on the in-memory store.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (engine.Store, *persist.Memory, func(), error) {
	if cfg.Database.Driver != "postgres" {
		mem := persist.NewMemory(cfg.Game.LotteryPrize)
		return mem, mem, func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(connectCtx, cfg.Database, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := persist.RunMigrations(connectCtx, db.Pool); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrations: %w", err)
	}
	log.Info("database ready", zap.String("driver", cfg.Database.Driver))
	return persist.NewPostgres(db, cfg.Game.LotteryPrize), nil, db.Close, nil
}

// snapshotter keeps a nil store from becoming a non-nil interface.
func snapshotter(m *persist.Memory) tui.Snapshotter {
	if m == nil {
		return nil
	}
	return m
}

func engineConfig(g config.GameConfig) engine.Config {
	return engine.Config{
		MaxItems:          g.MaxItems,
		MaxGroupSize:      g.MaxGroupSize,
		BlessCost:         g.BlessCost,
		BlessDuration:     g.BlessDuration,
		HomeCost:          g.HomeCost,
		BoostTimerMinutes: g.BoostTimerMinutes,
		LotteryCost:       g.LotteryCost,
		LotteryPrize:      g.LotteryPrize,
		RespawnTown:       g.RespawnTown,
		OwnerCap:          g.OwnerCap,
		QuestResetAge:     g.QuestResetAge,
		BlizzardMin:       g.BlizzardMin,
		BlizzardMax:       g.BlizzardMax,
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}
	return zapCfg.Build()
}

// isTerminal reports whether stdout is a terminal.
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
