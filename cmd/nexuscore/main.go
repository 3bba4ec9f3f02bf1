// Command nexuscore is the interactive front end for the three-tier
// memory engine.
//
// Usage:
//
//	nexuscore chat                        # start the REPL
//	nexuscore chat --config config.yaml   # with a config file
//	nexuscore ingest --dir data/docs      # sync documents into the vault
//	nexuscore version                     # show version information
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/nexuscore/budget"
	"github.com/BaSui01/nexuscore/config"
	"github.com/BaSui01/nexuscore/engine"
	"github.com/BaSui01/nexuscore/episodic"
	"github.com/BaSui01/nexuscore/history"
	"github.com/BaSui01/nexuscore/identity"
	"github.com/BaSui01/nexuscore/inference"
	"github.com/BaSui01/nexuscore/ingest"
	"github.com/BaSui01/nexuscore/internal/metrics"
	"github.com/BaSui01/nexuscore/internal/task"
	"github.com/BaSui01/nexuscore/semantic"
	"github.com/BaSui01/nexuscore/tokenizer"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(os.Args[2:])
	case "ingest":
		runIngest(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("starting nexuscore",
		zap.String("version", Version),
		zap.String("model", cfg.Inference.Model))

	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	est := budget.NewEstimator(tokenizer.NewTiktokenTokenizer(tokenizer.DefaultEncoding), logger)

	persona, overhead, err := identity.NewLoader(est, logger).LoadFile(cfg.Identity.ProfilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load identity profile: %v\n", err)
		os.Exit(1)
	}
	logger.Info("identity loaded", zap.Int("overhead_tokens", overhead))

	svc := inference.NewOllamaClient(cfg.Inference, logger)

	// Heartbeat: load the model weights before the first real turn.
	fmt.Println("Warming up inference model...")
	if err := svc.Warmup(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Inference service unreachable: %v\n", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.Ledger.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create ledger directory: %v\n", err)
			os.Exit(1)
		}
	}
	ledger, err := episodic.OpenSQLiteStore(cfg.Ledger.Path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open episodic ledger: %v\n", err)
		os.Exit(1)
	}
	defer ledger.Close()

	vault := semantic.NewInMemoryVectorStore(buildEmbedder(cfg, logger), logger)
	if cfg.Ingest.DocsDir != "" {
		syncer := ingest.NewSyncer(vault, cfg.Ingest.DocsPerSecond, logger)
		if report, err := syncer.SyncDir(context.Background(), cfg.Ingest.DocsDir); err != nil {
			logger.Warn("vault sync skipped", zap.Error(err))
		} else {
			logger.Info("vault synced",
				zap.Int("ingested", report.Ingested),
				zap.Int("skipped", report.Skipped),
				zap.Int("failed", report.Failed))
		}
	}

	eng := engine.New(engine.Deps{
		Persona:    persona,
		Controller: budget.NewController(cfg.Budget, est, logger),
		History:    history.NewBuffer(),
		Episodic:   episodic.NewRecallAdapter(ledger, est, logger),
		Semantic:   semantic.NewSearchAdapter(vault, semantic.NewExpander(nil), logger),
		Archiver:   episodic.NewConsolidator(ledger, svc, logger),
		Inference:  svc,
		Runner:     task.NewRunner(logger),
		Logger:     logger,
	})

	repl(eng, logger)
}

// repl reads user turns until exit, intercepting slash commands before
// they reach the engine.
func repl(eng *engine.Engine, logger *zap.Logger) {
	fmt.Println("nexuscore ready. Type /help for commands, /exit to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if done := runCommand(eng, line); done {
				break
			}
			continue
		}

		reply, err := eng.ProcessTurn(context.Background(), line)
		if err != nil {
			fmt.Printf("[turn failed: %v]\n", err)
			continue
		}
		fmt.Println(reply)
	}

	fmt.Println("Archiving session...")
	if err := eng.Close(context.Background()); err != nil {
		logger.Error("session-end sequence failed", zap.Error(err))
	}
	fmt.Println("Goodbye.")
}

// runCommand handles a slash command and reports whether the REPL
// should exit.
func runCommand(eng *engine.Engine, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/exit", "/quit":
		return true

	case "/clear":
		eng.ClearSlots()
		fmt.Println("[external context cleared]")

	case "/recall":
		slot, err := eng.Recall(context.Background(), arg)
		switch {
		case err != nil:
			fmt.Printf("[recall failed: %v]\n", err)
		case slot == nil:
			fmt.Println("[no past sessions matched]")
		default:
			fmt.Printf("[loaded %s]\n%s\n", slot.Source, slot.Content)
		}

	case "/vault":
		slot, err := eng.VaultSearch(context.Background(), arg)
		switch {
		case err != nil:
			fmt.Printf("[vault search failed: %v]\n", err)
		case slot == nil:
			fmt.Println("[no confident vault match]")
		default:
			fmt.Printf("[loaded %s (distance %.3f)]\n%s\n", slot.Source, *slot.Distance, slot.Content)
		}

	case "/status":
		fmt.Printf("[%s]\n", eng.Describe())

	case "/help":
		fmt.Println("Commands: /recall <query>, /vault <query>, /clear, /status, /exit")

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
	}
	return false
}

// buildEmbedder optionally wraps the Ollama embedder with the Redis
// cache; cache construction failure degrades to the plain embedder.
func buildEmbedder(cfg config.Config, logger *zap.Logger) semantic.Embedder {
	embedder := semantic.NewOllamaEmbedder(cfg.Embedder, logger)
	if !cfg.Cache.Enabled {
		return embedder
	}
	cached, err := semantic.NewCachedEmbedder(embedder, cfg.SemanticCacheConfig(), logger)
	if err != nil {
		logger.Warn("embedding cache unavailable, continuing without it", zap.Error(err))
		return embedder
	}
	return cached
}

func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	dir := fs.String("dir", "", "Docs directory (overrides config)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dir != "" {
		cfg.Ingest.DocsDir = *dir
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	vault := semantic.NewInMemoryVectorStore(buildEmbedder(cfg, logger), logger)
	syncer := ingest.NewSyncer(vault, cfg.Ingest.DocsPerSecond, logger)

	report, err := syncer.SyncDir(context.Background(), cfg.Ingest.DocsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingestion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %d, skipped %d, failed %d\n", report.Ingested, report.Skipped, report.Failed)
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func printVersion() {
	fmt.Printf("nexuscore %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`nexuscore - three-tier memory engine

Usage:
  nexuscore <command> [options]

Commands:
  chat      Start the interactive session
  ingest    Sync documents into the vault
  version   Show version information
  help      Show this help

Options for chat and ingest:
  --config  Path to YAML config file
  --dir     Docs directory (ingest only)`)
}
