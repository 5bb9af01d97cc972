// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts and pre-filling them from profiles
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/followup"
	"github.com/harperreed/rolodex/models"
	"github.com/harperreed/rolodex/sync"
)

// ProfileLookup fetches a public profile to pre-fill a contact.
type ProfileLookup interface {
	Lookup(ctx context.Context, profileURL string) (*sync.Profile, error)
}

// AddContactCommand adds a new contact.
func AddContactCommand(svc *crm.Service, lookup ProfileLookup, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ContinueOnError)
	fs.SetOutput(stdout)
	name := fs.String("name", "", "Contact name (required unless --from-profile)")
	company := fs.String("company", "", "Company name")
	role := fs.String("role", "", "Job title or role")
	email := fs.String("email", "", "Email address")
	profileURL := fs.String("profile-url", "", "External profile URL")
	fromProfile := fs.String("from-profile", "", "Pre-fill from this profile URL")
	notes := fs.String("notes", "", "Notes about the contact")
	relationship := fs.String("relationship", "peer", "peer, mentor, or client")
	frequency := fs.String("frequency", "none", "weekly, biweekly, monthly, quarterly, biannually, annually, or none")
	autoSync := fs.Bool("auto-sync", false, "Include in automatic interaction detection")
	if err := fs.Parse(args); err != nil {
		return err
	}

	freq, err := models.ParseFrequency(*frequency)
	if err != nil {
		return err
	}

	contact := &models.Contact{
		Name:         *name,
		Company:      *company,
		Role:         *role,
		Email:        *email,
		ProfileURL:   *profileURL,
		Notes:        *notes,
		Relationship: models.RelationshipType(*relationship),
		Frequency:    freq,
		AutoSync:     *autoSync,
	}

	ctx := context.Background()
	if *fromProfile != "" {
		if lookup == nil {
			return sync.ErrProfileLookupDisabled
		}
		profile, err := lookup.Lookup(ctx, *fromProfile)
		if err != nil {
			return fmt.Errorf("profile lookup failed: %w", err)
		}
		prefill(contact, profile)
	}

	if strings.TrimSpace(contact.Name) == "" {
		return fmt.Errorf("--name is required")
	}

	if err := svc.CreateContact(ctx, contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)
	if contact.Company != "" {
		fmt.Fprintf(stdout, "  Company: %s\n", contact.Company)
	}
	if contact.Frequency.IsSet() {
		fmt.Fprintf(stdout, "  Cadence: %s\n", contact.Frequency)
	}
	if contact.AutoSync {
		fmt.Fprintf(stdout, "  Auto-sync: on (%s)\n", contact.ProfileURL)
	} else if *autoSync {
		fmt.Fprintln(stdout, "  Auto-sync: off (needs --profile-url)")
	}

	return nil
}

// prefill copies profile fields into empty contact fields; explicit flags win.
func prefill(c *models.Contact, p *sync.Profile) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&c.Name, p.Name)
	fill(&c.Company, p.Company)
	fill(&c.Role, p.Role)
	fill(&c.ProfileURL, p.ProfileURL)
	fill(&c.Notes, p.Bio)
}

// LookupProfileCommand prints what a profile lookup would pre-fill.
func LookupProfileCommand(lookup ProfileLookup, args []string) error {
	fs := flag.NewFlagSet("lookup-profile", flag.ContinueOnError)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("profile URL is required")
	}
	if lookup == nil {
		return sync.ErrProfileLookupDisabled
	}

	profile, err := lookup.Lookup(context.Background(), fs.Arg(0))
	if errors.Is(err, sync.ErrProfileNotFound) {
		fmt.Fprintln(stdout, "No profile found at that URL")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Name:     %s\n", orDash(profile.Name))
	fmt.Fprintf(stdout, "Company:  %s\n", orDash(profile.Company))
	fmt.Fprintf(stdout, "Role:     %s\n", orDash(profile.Role))
	fmt.Fprintf(stdout, "Location: %s\n", orDash(profile.Location))
	fmt.Fprintf(stdout, "Profile:  %s\n", profile.ProfileURL)
	return nil
}

// ListContactsCommand lists contacts sorted by urgency.
func ListContactsCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ContinueOnError)
	fs.SetOutput(stdout)
	query := fs.String("query", "", "Filter by name, company or email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	statuses, _, err := svc.Dashboard(context.Background(), followup.ViewAll)
	if err != nil {
		return err
	}

	q := strings.ToLower(strings.TrimSpace(*query))
	var shown []models.ContactStatus
	for _, s := range statuses {
		c := s.Contact
		if q != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Company+" "+c.Email), q) {
			continue
		}
		shown = append(shown, s)
	}

	if len(shown) == 0 {
		fmt.Fprintln(stdout, "No contacts found")
		return nil
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "NAME\tCOMPANY\tCADENCE\tLAST CONTACT\tSYNC\tID")
	_, _ = fmt.Fprintln(w, "----\t-------\t-------\t------------\t----\t--")
	for _, s := range shown {
		c := s.Contact
		syncState := "-"
		if c.SyncEligible() {
			syncState = string(c.SyncStatus)
		}
		_, _ = fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\t%s\t%s\n",
			statusIndicator(s.DueStatus), c.Name, orDash(c.Company), c.Frequency,
			formatDaysSince(s.DaysSince), syncState, shortID(c.ID.String()))
	}
	_ = w.Flush()

	fmt.Fprintf(stdout, "\nTotal: %d contact(s)\n", len(shown))
	return nil
}

// UpdateContactCommand updates an existing contact. Only flags that were
// passed change; an empty value clears the field.
func UpdateContactCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("update-contact", flag.ContinueOnError)
	fs.SetOutput(stdout)
	name := fs.String("name", "", "Contact name")
	company := fs.String("company", "", "Company name")
	role := fs.String("role", "", "Job title or role")
	email := fs.String("email", "", "Email address")
	profileURL := fs.String("profile-url", "", "External profile URL (empty disables auto-sync)")
	notes := fs.String("notes", "", "Notes about the contact")
	relationship := fs.String("relationship", "", "peer, mentor, or client")
	frequency := fs.String("frequency", "", "Engagement cadence or none")
	autoSync := fs.Bool("auto-sync", false, "Include in automatic interaction detection")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("contact ID or name is required")
	}

	ctx := context.Background()
	contact, err := svc.ResolveContact(ctx, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}

	var ferr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			contact.Name = *name
		case "company":
			contact.Company = *company
		case "role":
			contact.Role = *role
		case "email":
			contact.Email = *email
		case "profile-url":
			contact.ProfileURL = *profileURL
		case "notes":
			contact.Notes = *notes
		case "relationship":
			contact.Relationship = models.RelationshipType(*relationship)
		case "frequency":
			contact.Frequency, ferr = models.ParseFrequency(*frequency)
		case "auto-sync":
			contact.AutoSync = *autoSync
		}
	})
	if ferr != nil {
		return ferr
	}

	if err := svc.UpdateContact(ctx, contact); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Contact updated: %s (ID: %s)\n", contact.Name, contact.ID)
	return nil
}

// DeleteContactCommand deletes a contact and everything logged against them.
func DeleteContactCommand(svc *crm.Service, args []string) error {
	fs := flag.NewFlagSet("delete-contact", flag.ContinueOnError)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("contact ID or name is required")
	}

	ctx := context.Background()
	contact, err := svc.ResolveContact(ctx, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}

	if err := svc.DeleteContact(ctx, contact.ID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Contact deleted: %s\n", contact.Name)
	return nil
}
