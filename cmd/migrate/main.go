// ABOUTME: Migration utility copying rolodex data between the SQLite and Charm backends
// ABOUTME: Preserves ids and timestamps; contacts already present in the target are skipped

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/rolodex/charm"
	"github.com/harperreed/rolodex/config"
	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/db"
)

func main() {
	dbPath := flag.String("db", "", "Path to SQLite database (default: configured db_path)")
	reverse := flag.Bool("reverse", false, "Copy from Charm into SQLite instead")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Create a backup of the SQLite file before writing to it")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "migrate"})

	path := *dbPath
	if path == "" {
		_ = config.LoadDotEnv()
		cfg, err := config.Load()
		if err != nil {
			logger.Fatal("failed to load config", "err", err)
		}
		path = cfg.ResolvedDBPath()
	}

	if *reverse && *backup && !*dryRun {
		if err := backupFile(path, logger); err != nil {
			logger.Fatal("backup failed", "err", err)
		}
	}

	sqlite, err := db.Open(path)
	if err != nil {
		logger.Fatal("failed to open database", "path", path, "err", err)
	}
	defer func() { _ = sqlite.Close() }()

	client, err := charm.GetClient()
	if err != nil {
		logger.Fatal("failed to open charm backend", "err", err)
	}
	kv, err := charm.NewStore(client, logger)
	if err != nil {
		logger.Fatal("failed to load charm snapshot", "err", err)
	}
	defer func() { _ = kv.Close() }()

	var src, dst crm.Store = sqlite, kv
	from, to := "sqlite", "charm"
	if *reverse {
		src, dst = kv, sqlite
		from, to = to, from
	}

	logger.Info("copying", "from", from, "to", to, "dry-run", *dryRun)
	stats, err := copyAll(context.Background(), src, dst, *dryRun)
	if err != nil {
		logger.Fatal("migration failed", "err", err)
	}
	logger.Info("migration completed",
		"contacts", stats.Contacts,
		"skipped", stats.SkippedContacts,
		"interactions", stats.Interactions,
		"suggestions", stats.Suggestions,
	)
}

func backupFile(path string, logger *log.Logger) error {
	input, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, input, 0600); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	logger.Info("backup created", "path", backupPath)
	return nil
}
