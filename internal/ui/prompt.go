// Package ui implements the terminal prompts and progress display of the
// interactive session.
package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/pdiddy/pubmed-miner/internal/search"
	"github.com/pdiddy/pubmed-miner/internal/session"
)

// Welcome is printed before the first prompt.
const Welcome = "Fetch and download large batches of abstracts from the NCBI PubMed library.\nPress ctrl+c at any prompt to quit."

// FormPrompter asks questions with huh forms and writes notices to Out.
type FormPrompter struct {
	Out io.Writer

	// DefaultEmail pre-fills the email prompt.
	DefaultEmail string
}

var _ session.Prompter = (*FormPrompter)(nil)

// NewFormPrompter returns a prompter writing notices to out.
func NewFormPrompter(out io.Writer) *FormPrompter {
	return &FormPrompter{Out: out}
}

// Email asks for the NCBI contact address.
func (p *FormPrompter) Email(ctx context.Context) (string, error) {
	email := p.DefaultEmail
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("NCBI contact email").
				Description("NCBI requires a work or registered email with every request").
				Placeholder("name@example.org").
				Value(&email),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return sanitizeInput(email), nil
}

// Confirm asks a yes/no question.
func (p *FormPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}
	return ok, nil
}

// Query asks for the search term, the optional date range and the record
// cap, pre-filled with prev.
func (p *FormPrompter) Query(ctx context.Context, prev session.QueryInput) (session.QueryInput, error) {
	in := prev
	maxText := ""
	if prev.MaxRecords > 0 {
		maxText = strconv.Itoa(prev.MaxRecords)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Keywords and search term").
				Value(&in.Term),
			huh.NewInput().
				Title("Start date").
				Description("YYYY/MM/DD, optional; give both dates or neither").
				Placeholder("2020/01/01").
				Value(&in.From).
				Validate(validateDate),
			huh.NewInput().
				Title("End date").
				Description("YYYY/MM/DD, optional").
				Placeholder("2020/12/31").
				Value(&in.To).
				Validate(validateDate),
			huh.NewInput().
				Title("Maximum number of records").
				Description("Suggested 2000-50000").
				Value(&maxText).
				Validate(validateMax),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return prev, fmt.Errorf("prompt cancelled: %w", err)
	}

	in.Term = sanitizeInput(in.Term)
	in.From = strings.TrimSpace(in.From)
	in.To = strings.TrimSpace(in.To)
	in.MaxRecords, _ = strconv.Atoi(strings.TrimSpace(maxText))
	return in, nil
}

// Filename asks for the output table name without extension.
func (p *FormPrompter) Filename(ctx context.Context) (string, error) {
	var name string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name your CSV file").
				Description("Do not include .csv").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("filename cannot be empty")
					}
					return nil
				}),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return sanitizeInput(name), nil
}

// Notify prints a styled notice.
func (p *FormPrompter) Notify(msg string) {
	fmt.Fprintln(p.Out, RenderNote(msg))
}

func validateDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := search.ParseDate(s); err != nil {
		return fmt.Errorf("use YYYY/MM/DD")
	}
	return nil
}

func validateMax(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

// sanitizeInput trims s and removes control characters other than tab
// and newline.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 || (r < 32 && r != '\t' && r != '\n') || r == 127 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
