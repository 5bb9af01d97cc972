// ABOUTME: CLI commands for replicating the rolodex snapshot through Charm Cloud
// ABOUTME: Link, status, manual push/pull, auto-sync toggle and local wipe

package charm

import (
	"flag"
	"fmt"
)

// LinkCommand links this device to a Charm account. Charm authenticates with
// SSH keys, so linking is a first successful sync.
func LinkCommand(args []string) error {
	fs := flag.NewFlagSet("sync link", flag.ExitOnError)
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}

	fmt.Printf("Linking to Charm Cloud (%s)...\n\n", c.Config().Host)

	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	id, err := c.ID()
	if err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}
	fmt.Printf("✓ Auto-sync: %v\n", c.Config().AutoSync)

	return nil
}

// CloudStatusCommand shows the charm configuration and what the local
// snapshot holds.
func CloudStatusCommand(args []string) error {
	fs := flag.NewFlagSet("sync cloud-status", flag.ExitOnError)
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	store, err := NewStore(c, nil)
	if err != nil {
		return err
	}

	printCloudStatus(c, store)
	return nil
}

func printCloudStatus(c *Client, store *Store) {
	cfg := c.Config()
	fmt.Println("Charm Sync Status")
	fmt.Println("─────────────────")
	fmt.Printf("Server:       %s\n", cfg.Host)
	fmt.Printf("Auto-sync:    %v\n", cfg.AutoSync)

	if id, err := c.ID(); err != nil {
		fmt.Println("Status:       Not connected")
	} else {
		fmt.Println("Status:       Connected")
		fmt.Printf("ID:           %s\n", id)
	}

	contacts, interactions, suggestions := store.Stats()
	fmt.Printf("Contacts:     %d\n", contacts)
	fmt.Printf("Interactions: %d\n", interactions)
	fmt.Printf("Suggestions:  %d pending\n", suggestions)
}

// CloudNowCommand pushes local changes and pulls remote ones immediately.
func CloudNowCommand(args []string) error {
	fs := flag.NewFlagSet("sync cloud-now", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Show verbose output")
	_ = fs.Parse(args)

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}

	if *verbose {
		fmt.Println("Syncing with server...")
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Println("✓ Synced")
	return nil
}

// AutoSyncCommand enables or disables push-on-write.
func AutoSyncCommand(args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ExitOnError)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	_ = fs.Parse(args)

	if *enable == *disable {
		fmt.Println("Usage: rolodex sync auto --enable|--disable")
		return nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.SetAutoSync(*enable); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	if *enable {
		fmt.Println("✓ Auto-sync enabled")
	} else {
		fmt.Println("✓ Auto-sync disabled")
	}
	return nil
}

// WipeCommand deletes all local KV data. It needs --confirm.
func WipeCommand(args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("WARNING: This will delete ALL local data!")
		fmt.Println()
		fmt.Println("To confirm, run:")
		fmt.Println("  rolodex sync wipe --confirm")
		return nil
	}

	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}

	fmt.Println("✓ All data wiped")
	fmt.Println("Your Charm account is still linked.")
	return nil
}
