package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"AutoCompound/internal/chain"
	"AutoCompound/internal/config"
	"AutoCompound/internal/contracts"
	"AutoCompound/internal/notifier"
	"AutoCompound/internal/reinvest"
	"AutoCompound/internal/scheduler"

	"github.com/joho/godotenv"
)

// exitStartupFailure is the exit status when the bot cannot be wired up.
const exitStartupFailure = 3

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] AutoCompound starting...")

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] no .env loaded: %v", err)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := run(ctx, cfgPath)
	stop()
	os.Exit(code)
}

// run wires the bot, performs the startup cycle and then blocks until ctx is
// cancelled. It returns the process exit status.
func run(ctx context.Context, cfgPath string) int {
	cfg, plan, err := prepare(cfgPath)
	if err != nil {
		log.Printf("[FATAL] %v", err)
		return exitStartupFailure
	}

	client, err := chain.Dial(ctx, cfg.RPCURL, cfg.PrivateKey)
	if err != nil {
		log.Printf("[FATAL] connect: %v", err)
		return exitStartupFailure
	}
	defer client.Close()

	runner := reinvest.NewRunner(plan, client)

	var n notifier.Notifier = notifier.NewNoopNotifier()
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}

	sched := scheduler.NewScheduler(ctx, runner, n, cfg.OverlapPolicy)
	if err := sched.Register(cfg.Interval()); err != nil {
		log.Printf("[FATAL] register cycle: %v", err)
		return exitStartupFailure
	}

	// The first cycle completes before the periodic schedule starts.
	sched.RunNow()
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	log.Println("[INFO] AutoCompound is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return 0
}

// prepare loads and validates everything that does not need the network.
func prepare(cfgPath string) (*config.Config, *reinvest.Plan, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation: %w", err)
	}
	book, err := contracts.LoadAddressBook(cfg.AddressBook)
	if err != nil {
		return nil, nil, err
	}
	plan, err := reinvest.Compile(cfg, book)
	if err != nil {
		return nil, nil, fmt.Errorf("build action plan: %w", err)
	}
	return cfg, plan, nil
}
