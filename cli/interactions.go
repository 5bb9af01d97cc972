// ABOUTME: Interaction CLI commands
// ABOUTME: Log, list and delete interactions; lists fall back to the activity feed
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/models"
)

// parseWhen accepts RFC3339, a bare date, or a relative "3d"/"2h" offset.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days >= 0 {
			return now.AddDate(0, 0, -days), nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339, YYYY-MM-DD, or an offset like 3d or 2h)", s)
}

// LogInteractionCommand records an interaction with a contact.
func LogInteractionCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	fs.SetOutput(stdout)
	kind := fs.String("kind", "", "call, coffee, message, email, or linkedin (required)")
	when := fs.String("when", "", "When it happened (default now)")
	notes := fs.String("notes", "", "Notes about the interaction")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("contact ID or name is required")
	}

	k, err := models.ParseInteractionKind(*kind)
	if err != nil {
		return err
	}
	ts, err := parseWhen(*when, svc.Now())
	if err != nil {
		return err
	}

	ctx := context.Background()
	contact, err := svc.ResolveContact(ctx, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}

	in := &models.Interaction{ContactID: contact.ID, Kind: k, Timestamp: ts, Notes: *notes}
	if err := svc.LogInteraction(ctx, in); err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Logged %s with %s on %s\n", in.Kind, contact.Name, in.Timestamp.Local().Format("2006-01-02 15:04"))
	return nil
}

// ListInteractionsCommand shows one contact's history, or the most recent
// interactions across everyone when no contact is given.
func ListInteractionsCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("interactions", flag.ContinueOnError)
	fs.SetOutput(stdout)
	limit := fs.Int("limit", 20, "Maximum results for the activity feed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	var (
		list     []models.Interaction
		names    = map[uuid.UUID]string{}
		err      error
		showName = true
	)

	if fs.NArg() > 0 {
		contact, rerr := svc.ResolveContact(ctx, strings.Join(fs.Args(), " "))
		if rerr != nil {
			return rerr
		}
		list, err = svc.History(ctx, contact.ID)
		if err != nil {
			return err
		}
		showName = false

		status, err := svc.ContactStatus(ctx, contact.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s %s: %s, last contact %s\n\n", statusIndicator(status.DueStatus),
			contact.Name, status.DueStatus.Label(), formatDaysSince(status.DaysSince))

		pending, err := svc.SuggestionsForContact(ctx, contact.ID)
		if err != nil {
			return err
		}
		defer func() {
			if len(pending) > 0 {
				fmt.Fprintf(stdout, "\n%d pending suggestion(s) for %s\n", len(pending), contact.Name)
			}
		}()
	} else {
		list, err = svc.RecentInteractions(ctx, *limit)
		if err != nil {
			return err
		}
		contacts, err := svc.ListContacts(ctx)
		if err != nil {
			return err
		}
		for _, c := range contacts {
			names[c.ID] = c.Name
		}
	}

	if len(list) == 0 {
		fmt.Fprintln(stdout, "No interactions logged")
		return nil
	}

	w := newTable()
	if showName {
		_, _ = fmt.Fprintln(w, "WHEN\tCONTACT\tKIND\tSOURCE\tNOTES\tID")
	} else {
		_, _ = fmt.Fprintln(w, "WHEN\tKIND\tSOURCE\tNOTES\tID")
	}
	for _, in := range list {
		when := in.Timestamp.Local().Format("2006-01-02 15:04")
		if showName {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", when, orDash(names[in.ContactID]), in.Kind,
				in.Provenance, orDash(in.Notes), shortID(in.ID.String()))
		} else {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", when, in.Kind, in.Provenance,
				orDash(in.Notes), shortID(in.ID.String()))
		}
	}
	_ = w.Flush()
	return nil
}

// DeleteInteractionCommand removes one interaction by full id.
func DeleteInteractionCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("delete-interaction", flag.ContinueOnError)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("interaction ID is required")
	}

	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid interaction ID: %w", err)
	}
	if err := svc.DeleteInteraction(context.Background(), id); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ Interaction deleted: %s\n", id)
	return nil
}
