// ABOUTME: Entry point for the rolodex relationship manager
// ABOUTME: Routes to the MCP server, TUI, web API or CLI commands based on arguments
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/harperreed/rolodex/charm"
	"github.com/harperreed/rolodex/cli"
	"github.com/harperreed/rolodex/config"
	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/db"
	"github.com/harperreed/rolodex/sync"
	"github.com/harperreed/rolodex/tui"
	"github.com/harperreed/rolodex/web"
)

const version = "0.2.0"

// app holds everything a command may need, opened once per run.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	svc    *crm.Service
	orch   *sync.Orchestrator
	sched  *sync.Scheduler
	close  func()
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/rolodex/rolodex.db)")
	backend := flag.String("backend", "", "Storage backend: sqlite or charm")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	// Handle version flag
	if *showVersion {
		fmt.Printf("rolodex version %s\n", version)
		os.Exit(0)
	}

	// Get remaining args after flags
	args := flag.Args()

	// If no command specified, show usage
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	_ = config.LoadDotEnv()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "rolodex"})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *backend != "" {
		cfg.Backend = *backend
		if err := cfg.Validate(); err != nil {
			logger.Fatal("invalid backend", "err", err)
		}
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Route to top-level command
	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		a := mustOpen(ctx, cfg, logger)
		defer a.close()
		a.startScheduler(ctx)
		if err := cli.MCPCommand(ctx, a.svc, a.orch, version, logger); err != nil {
			logger.Fatal("MCP server failed", "err", err)
		}

	case "tui":
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			logger.Fatal("the TUI needs an interactive terminal")
		}
		// Log lines would tear the full-screen UI.
		logger.SetOutput(io.Discard)
		a := mustOpen(ctx, cfg, logger)
		defer a.close()
		a.startScheduler(ctx)
		if err := tui.Run(a.svc, a.orch); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "web":
		fs := flag.NewFlagSet("web", flag.ExitOnError)
		port := fs.Int("port", cfg.WebPort, "Port to listen on")
		_ = fs.Parse(commandArgs)

		a := mustOpen(ctx, cfg, logger)
		defer a.close()
		a.startScheduler(ctx)
		server := web.NewServer(a.svc, a.orch, sync.NewProfileClient(cfg.LixAPIKey), logger, web.Options{})
		if err := server.Start(ctx, *port); err != nil {
			logger.Fatal("web server failed", "err", err)
		}

	case "crm":
		if len(commandArgs) == 0 {
			fmt.Println("Error: crm requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		a := mustOpen(ctx, cfg, logger)
		defer a.close()
		runCRM(a, commandArgs[0], commandArgs[1:])

	case "sync":
		if len(commandArgs) == 0 {
			fmt.Println("Error: sync requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		runSync(ctx, cfg, logger, commandArgs[0], commandArgs[1:])

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runCRM(a *app, command string, args []string) {
	var err error
	switch command {
	// Contact commands
	case "add-contact":
		err = cli.AddContactCommand(a.svc, sync.NewProfileClient(a.cfg.LixAPIKey), args)
	case "list-contacts":
		err = cli.ListContactsCommand(a.svc, args)
	case "update-contact":
		err = cli.UpdateContactCommand(a.svc, args)
	case "delete-contact":
		err = cli.DeleteContactCommand(a.svc, args)
	case "lookup-profile":
		err = cli.LookupProfileCommand(sync.NewProfileClient(a.cfg.LixAPIKey), args)

	// Interaction commands
	case "log-interaction":
		err = cli.LogInteractionCommand(a.svc, args)
	case "list-interactions":
		err = cli.ListInteractionsCommand(a.svc, args)
	case "delete-interaction":
		err = cli.DeleteInteractionCommand(a.svc, args)

	// Dashboard and review
	case "followups":
		err = cli.FollowupsCommand(a.svc, args)
	case "suggestions":
		err = cli.SuggestionsCommand(a.svc, args)

	default:
		fmt.Printf("Unknown crm command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		a.logger.Fatal("crm command failed", "command", command, "err", err)
	}
}

func runSync(ctx context.Context, cfg *config.Config, logger *log.Logger, command string, args []string) {
	var err error
	switch command {
	// Commands that need no store
	case "init":
		err = cli.SyncInitCommand(args)
	case "safe-mode":
		err = cli.SafeModeCommand(cfg, args)
	case "link":
		err = charm.LinkCommand(args)
	case "cloud-status":
		err = charm.CloudStatusCommand(args)
	case "cloud-now":
		err = charm.CloudNowCommand(args)
	case "auto":
		err = charm.AutoSyncCommand(args)
	case "wipe":
		err = charm.WipeCommand(args)

	case "now", "daemon", "status":
		a := mustOpen(ctx, cfg, logger)
		defer a.close()
		switch command {
		case "now":
			err = cli.SyncNowCommand(a.orch, args)
		case "daemon":
			err = cli.SyncDaemonCommand(ctx, a.sched, logger, args)
		case "status":
			err = cli.SyncStatusCommand(cfg, a.orch, args)
		}

	default:
		fmt.Printf("Unknown sync command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("sync command failed", "command", command, "err", err)
		os.Exit(1)
	}
}

func mustOpen(ctx context.Context, cfg *config.Config, logger *log.Logger) *app {
	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", "err", err)
	}
	return a
}

func openApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	svc := crm.NewService(store)
	svc.Evaluator.Fallback = cfg.Fallback()

	a := &app{cfg: cfg, logger: logger, svc: svc, close: closeStore}

	detector, err := buildDetector(ctx, cfg)
	if err != nil {
		closeStore()
		return nil, err
	}
	if detector == nil {
		logger.Debug("interaction detection disabled")
		return a, nil
	}

	a.orch = sync.NewOrchestrator(svc, detector, logger.WithPrefix("sync"))
	a.orch.SafeMode = cfg.SafeModeEnabled
	a.orch.Notify = func(res sync.CycleResult) {
		if res.Failed() {
			logger.Warn("interaction sync failed", "err", res.Err)
			return
		}
		logger.Info("new interactions detected; review them with 'rolodex crm suggestions'", "count", res.Added)
	}

	interval, err := cfg.Interval()
	if err != nil {
		closeStore()
		return nil, err
	}
	a.sched, err = sync.NewScheduler(a.orch, interval)
	if err != nil {
		closeStore()
		return nil, err
	}
	return a, nil
}

// startScheduler runs background detection for long-lived commands.
func (a *app) startScheduler(ctx context.Context) {
	if a.sched == nil {
		return
	}
	if err := a.sched.Start(ctx); err != nil {
		a.logger.Warn("failed to start sync scheduler", "err", err)
		return
	}
	closeStore := a.close
	a.close = func() {
		a.sched.Stop()
		closeStore()
	}
}

func openStore(cfg *config.Config, logger *log.Logger) (crm.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendCharm:
		client, err := charm.GetClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open charm backend: %w", err)
		}
		store, err := charm.NewStore(client, logger.WithPrefix("charm"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		path := cfg.ResolvedDBPath()
		store, err := db.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database %s: %w", path, err)
		}
		logger.Debug("opened database", "path", path)
		return store, func() { _ = store.Close() }, nil
	}
}

func buildDetector(ctx context.Context, cfg *config.Config) (sync.Detector, error) {
	switch cfg.Detector {
	case config.DetectorNone:
		return nil, nil
	case config.DetectorCalendar:
		return sync.CalendarDetectorFromToken(ctx)
	case config.DetectorHTTP:
		return sync.NewHTTPDetector(cfg.DetectorURL, cfg.DetectorAPIKey), nil
	default:
		return sync.NewSimulatedDetector(), nil
	}
}

func printUsage() {
	fmt.Printf(`rolodex v%s - Personal relationship manager

USAGE:
  rolodex [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/rolodex/rolodex.db)
  --backend <name>       Storage backend: sqlite (default) or charm

COMMANDS:
  mcp                    Start MCP server on stdio
  tui                    Full-screen follow-up dashboard
  web                    JSON HTTP API (--port, default 8080)
  crm                    Contact, interaction and suggestion commands
  sync                   Interaction detection and cloud replication

CRM COMMANDS:
  rolodex crm add-contact       Add a new contact
    --name <name>                 Contact name (required unless --from-profile)
    --company, --role, --email, --notes
    --profile-url <url>           External profile URL
    --from-profile <url>          Pre-fill from a profile lookup (needs LIX_API_KEY)
    --relationship <type>         peer, mentor, or client (default: peer)
    --frequency <cadence>         weekly, biweekly, monthly, quarterly, biannually, annually, none
    --auto-sync                   Include in automatic interaction detection

  rolodex crm list-contacts     List contacts with due status
    --query <text>                Filter by name, company or email

  rolodex crm update-contact [flags] <id|name>
  rolodex crm delete-contact <id|name>
  rolodex crm lookup-profile <url>

  rolodex crm log-interaction [flags] <id|name>
    --kind <kind>                 call, coffee, message, email, or linkedin (required)
    --when <time>                 RFC3339, YYYY-MM-DD, or an offset like 3d or 2h
    --notes <text>

  rolodex crm list-interactions [<id|name>]   History for one contact, or the activity feed
    --limit <n>                   Feed size (default: 20)
  rolodex crm delete-interaction <id>

  rolodex crm followups         Contacts by urgency
    --view <view>                 all, due (default), or recent

  rolodex crm suggestions [list]
  rolodex crm suggestions accept <id>...
  rolodex crm suggestions dismiss <id>...
  rolodex crm suggestions edit [--kind] [--when] [--notes] <id>

SYNC COMMANDS:
  rolodex sync now              Run one detection cycle
  rolodex sync daemon           Run detection on an interval until interrupted
  rolodex sync status           Detector, safe mode and per-contact sync state
  rolodex sync init             Authorize Google Calendar for the calendar detector
  rolodex sync safe-mode --enable|--disable
  rolodex sync link             Link this device to Charm Cloud
  rolodex sync cloud-status     Show Charm Cloud status
  rolodex sync cloud-now        Push and pull Charm Cloud changes now
  rolodex sync auto --enable|--disable
  rolodex sync wipe --confirm   Delete all local Charm data

ENVIRONMENT:
  ROLODEX_BACKEND, ROLODEX_DB_PATH, ROLODEX_DETECTOR (simulated, calendar, http, none),
  ROLODEX_DETECTOR_URL, ROLODEX_DETECTOR_API_KEY, ROLODEX_SYNC_INTERVAL, ROLODEX_SAFE_MODE,
  ROLODEX_DUE_FALLBACK, ROLODEX_LOG_LEVEL, ROLODEX_WEB_PORT, LIX_API_KEY,
  GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET

EXAMPLES:
  # Track a mentor monthly and log a coffee from last week
  rolodex crm add-contact --name "Jane Doe" --relationship mentor --frequency monthly
  rolodex crm log-interaction --kind coffee --when 7d "Jane Doe"

  # See who is due
  rolodex crm followups

  # Detect interactions and review the results
  rolodex sync now
  rolodex crm suggestions

`, version)
}
