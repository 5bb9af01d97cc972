// ABOUTME: Follow-up dashboard CLI command
// ABOUTME: Lists contacts by urgency with overdue and due-soon counts
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/followup"
)

// FollowupsCommand lists contacts needing follow-up.
func FollowupsCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("followups", flag.ContinueOnError)
	fs.SetOutput(stdout)
	viewName := fs.String("view", "due", "all, due, or recent")
	limit := fs.Int("limit", 0, "Maximum number of contacts to show (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	view, err := followup.ParseView(*viewName)
	if err != nil {
		return err
	}

	statuses, counts, err := svc.Dashboard(context.Background(), view)
	if err != nil {
		return fmt.Errorf("failed to build follow-up list: %w", err)
	}
	if *limit > 0 && len(statuses) > *limit {
		statuses = statuses[:*limit]
	}

	fmt.Fprintf(stdout, "🔴 %d overdue  🟡 %d due soon  🟢 %d on track  ⚪ %d no cadence\n\n",
		counts.Overdue, counts.DueSoon, counts.OnTrack, counts.NoFrequency)

	if len(statuses) == 0 {
		if view == followup.ViewDue {
			fmt.Fprintln(stdout, "Nobody is due. Nice work.")
		} else {
			fmt.Fprintln(stdout, "No contacts to show")
		}
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "NAME\tSTATUS\tCADENCE\tLAST CONTACT\tRELATIONSHIP")
	_, _ = fmt.Fprintln(w, "----\t------\t-------\t------------\t------------")
	for _, s := range statuses {
		_, _ = fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\t%s\n",
			statusIndicator(s.DueStatus), s.Contact.Name, s.DueStatus.Label(),
			s.Contact.Frequency, formatDaysSince(s.DaysSince), s.Contact.Relationship)
	}
	_ = w.Flush()
	return nil
}
