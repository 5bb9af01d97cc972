// ABOUTME: Interaction detection CLI commands
// ABOUTME: OAuth setup for the calendar detector, manual and daemon sync, status and safe mode
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/rolodex/config"
	"github.com/harperreed/rolodex/sync"
	"golang.org/x/oauth2"
)

// SyncInitCommand handles OAuth setup for the calendar detector.
func SyncInitCommand(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()

	oauthConfig, err := sync.OAuthConfig()
	if err != nil {
		return fmt.Errorf("failed to get OAuth config: %w", err)
	}

	// Start local server for OAuth callback
	callbackChan := make(chan *oauth2.Token, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := oauthConfig.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: ":8080", Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	authURL := oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOffline)

	fmt.Fprintln(stdout, "Opening browser for Google OAuth...")
	fmt.Fprintf(stdout, "\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)

	_ = openBrowser(authURL)

	select {
	case token := <-callbackChan:
		_ = server.Shutdown(ctx)

		file := sync.DefaultTokenFile()
		if err := file.Save(token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		fmt.Fprintf(stdout, "\n✓ Authenticated successfully\n")
		fmt.Fprintf(stdout, "✓ Tokens saved to %s\n\n", file.Path)
		fmt.Fprintln(stdout, "Set ROLODEX_DETECTOR=calendar to detect meetings with your contacts.")
		return nil

	case err := <-errChan:
		_ = server.Shutdown(ctx)
		return fmt.Errorf("OAuth flow failed: %w", err)
	}
}

// SyncNowCommand runs one detection cycle in the foreground.
func SyncNowCommand(orch *sync.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("now", flag.ContinueOnError)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if orch == nil {
		return fmt.Errorf("interaction detection is disabled (detector: none)")
	}

	res := orch.RunCycle(context.Background(), sync.TriggerManual)
	if res.Failed() {
		return res.Err
	}
	if res.Skipped {
		fmt.Fprintf(stdout, "Sync skipped: %s\n", describeSkip(res.SkipReason))
		return nil
	}
	fmt.Fprintf(stdout, "✓ %s\n", res)
	if res.Added > 0 {
		fmt.Fprintln(stdout, "Review them with 'rolodex crm suggestions'.")
	}
	return nil
}

func describeSkip(reason string) string {
	switch reason {
	case sync.SkipSafeMode:
		return "safe mode is on"
	case sync.SkipInFlight:
		return "another sync is already running"
	case sync.SkipNoEligible:
		return "no contacts have auto-sync enabled with a profile URL"
	}
	return reason
}

// SyncDaemonCommand runs the scheduler until ctx is cancelled.
func SyncDaemonCommand(ctx context.Context, sched *sync.Scheduler, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if sched == nil {
		return fmt.Errorf("interaction detection is disabled (detector: none)")
	}

	sched.OnCycle = func(res sync.CycleResult) {
		if res.Skipped {
			logger.Debug("cycle skipped", "trigger", res.Trigger, "reason", res.SkipReason)
			return
		}
		logger.Info(res.String(), "trigger", res.Trigger)
	}

	logger.Info("sync daemon started", "interval", sched.Interval())
	err := sched.Run(ctx)
	logger.Info("sync daemon stopped")
	return err
}

// SyncStatusCommand prints per-contact sync state and safe-mode diagnostics.
func SyncStatusCommand(cfg *config.Config, orch *sync.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}

	interval, _ := cfg.Interval()
	fmt.Fprintln(stdout, "Interaction Detection")
	fmt.Fprintln(stdout, "─────────────────────")
	fmt.Fprintf(stdout, "Detector:   %s\n", cfg.Detector)
	fmt.Fprintf(stdout, "Interval:   %s\n", interval)
	fmt.Fprintf(stdout, "Safe mode:  %v\n", cfg.SafeModeEnabled())

	if orch == nil {
		return nil
	}
	if last := orch.LastResult(); last != nil {
		fmt.Fprintf(stdout, "Last sync:  %s (%s)\n", formatTimeSince(last.FinishedAt), last)
	}

	rows, err := orch.Status(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "No contacts have auto-sync enabled.")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "CONTACT\tSTATUS\tPROFILE")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Status, r.ProfileURL)
	}
	_ = w.Flush()
	return nil
}

// SafeModeCommand toggles the safe-mode marker file.
func SafeModeCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("safe-mode", flag.ContinueOnError)
	fs.SetOutput(stdout)
	enable := fs.Bool("enable", false, "Suppress all detection cycles")
	disable := fs.Bool("disable", false, "Resume detection cycles")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *enable == *disable {
		fmt.Fprintf(stdout, "Safe mode: %v\n", cfg.SafeModeEnabled())
		fmt.Fprintln(stdout, "Usage: rolodex sync safe-mode --enable|--disable")
		return nil
	}
	if err := cfg.SetSafeMode(*enable); err != nil {
		return err
	}
	if *enable {
		fmt.Fprintln(stdout, "✓ Safe mode enabled")
	} else {
		fmt.Fprintln(stdout, "✓ Safe mode disabled")
	}
	if cfg.SafeModeEnabled() != *enable {
		fmt.Fprintln(stdout, "Note: ROLODEX_SAFE_MODE or the config file overrides this setting.")
	}
	return nil
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	command := exec.Command(cmd, args...)
	return command.Start()
}
