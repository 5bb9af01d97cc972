// ABOUTME: Suggestion review CLI commands
// ABOUTME: List, accept, dismiss and edit detected interactions
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/models"
)

// SuggestionsCommand dispatches `crm suggestions <list|accept|dismiss|edit>`.
func SuggestionsCommand(svc *crm.Service, args []string) error {
	if len(args) == 0 {
		return listSuggestions(svc)
	}

	switch sub, rest := args[0], args[1:]; sub {
	case "list":
		return listSuggestions(svc)
	case "accept":
		return acceptSuggestions(svc, rest)
	case "dismiss":
		return dismissSuggestions(svc, rest)
	case "edit":
		return editSuggestion(svc, rest)
	default:
		return fmt.Errorf("unknown suggestions command: %s (want list, accept, dismiss, or edit)", sub)
	}
}

func listSuggestions(svc *crm.Service) error {
	pending, err := svc.PendingSuggestions(context.Background())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(stdout, "No pending suggestions")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "ID\tCONTACT\tKIND\tWHEN\tNOTES")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t----\t-----")
	for _, s := range pending {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.ContactName, s.Kind,
			s.Timestamp.Local().Format("2006-01-02 15:04"), orDash(s.Notes))
	}
	_ = w.Flush()
	fmt.Fprintf(stdout, "\n%d pending suggestion(s)\n", len(pending))
	return nil
}

func acceptSuggestions(svc *crm.Service, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one suggestion ID is required")
	}
	ctx := context.Background()
	for _, id := range args {
		in, err := svc.AcceptSuggestion(ctx, id)
		if err != nil {
			return err
		}
		if in == nil {
			fmt.Fprintf(stdout, "- %s: no pending suggestion\n", id)
			continue
		}
		fmt.Fprintf(stdout, "✓ Accepted %s: logged %s on %s\n", id, in.Kind, in.Timestamp.Local().Format("2006-01-02"))
	}
	return nil
}

func dismissSuggestions(svc *crm.Service, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one suggestion ID is required")
	}
	ctx := context.Background()
	for _, id := range args {
		if err := svc.DismissSuggestion(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "✓ Dismissed %s\n", id)
	}
	return nil
}

func editSuggestion(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("suggestions edit", flag.ContinueOnError)
	fs.SetOutput(stdout)
	kind := fs.String("kind", "", "Corrected interaction kind")
	when := fs.String("when", "", "Corrected time")
	notes := fs.String("notes", "", "Corrected notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("suggestion ID is required")
	}

	var edit crm.SuggestionEdit
	var perr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "kind":
			k, err := models.ParseInteractionKind(*kind)
			if err != nil {
				perr = err
				return
			}
			edit.Kind = &k
		case "when":
			ts, err := parseWhen(*when, svc.Now())
			if err != nil {
				perr = err
				return
			}
			edit.Timestamp = &ts
		case "notes":
			edit.Notes = notes
		}
	})
	if perr != nil {
		return perr
	}

	ok, err := svc.EditSuggestion(context.Background(), fs.Arg(0), edit)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(stdout, "- %s: no pending suggestion\n", fs.Arg(0))
		return nil
	}
	fmt.Fprintf(stdout, "✓ Updated %s\n", fs.Arg(0))
	return nil
}
