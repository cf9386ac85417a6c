// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session drives the interactive mining flow as an explicit state
// machine: Idle -> EmailConfirmed -> Searching -> Fetching -> Exporting ->
// Done. Prompts go through a Prompter and work through a Runner, so the
// machine itself does no I/O.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-miner/internal/search"
	"github.com/pdiddy/pubmed-miner/pkg/types"
)

// State is a step of the interactive flow.
type State int

const (
	Idle State = iota
	EmailConfirmed
	Searching
	Fetching
	Exporting
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case EmailConfirmed:
		return "email_confirmed"
	case Searching:
		return "searching"
	case Fetching:
		return "fetching"
	case Exporting:
		return "exporting"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// QueryInput is the raw search form: dates are YYYY/MM/DD strings, both
// or neither.
type QueryInput struct {
	Term       string
	From       string
	To         string
	MaxRecords int
}

// Prompter asks the user for input. Returning an error ends the session.
type Prompter interface {
	Email(ctx context.Context) (string, error)
	Confirm(ctx context.Context, question string) (bool, error)
	Query(ctx context.Context, prev QueryInput) (QueryInput, error)
	Filename(ctx context.Context) (string, error)
	Notify(msg string)
}

// Runner performs the work behind each state. The contact email is passed
// on every call.
type Runner interface {
	Search(ctx context.Context, contact string, q types.SearchQuery) (types.IdentifierList, error)
	Fetch(ctx context.Context, contact string, ids types.IdentifierList) ([]types.ExtractedRecord, error)
	Export(ctx context.Context, term string, records []types.ExtractedRecord, filename string) (string, error)
}

// Options configures a Session.
type Options struct {
	// Database is the Entrez database searched.
	Database string

	// MaxRecords pre-fills the record cap in the query form.
	MaxRecords int

	Logger zerolog.Logger
}

// Result is what a finished session produced.
type Result struct {
	Email    string
	Query    types.SearchQuery
	IDs      types.IdentifierList
	Records  []types.ExtractedRecord
	Exported string
}

// Session is one run of the interactive flow.
type Session struct {
	prompter Prompter
	runner   Runner
	opts     Options

	state   State
	history []State
	input   QueryInput
	result  Result
}

// New creates a session in the Idle state.
func New(p Prompter, r Runner, opts Options) *Session {
	if opts.Database == "" {
		opts.Database = "pubmed"
	}
	return &Session{
		prompter: p,
		runner:   r,
		opts:     opts,
		state:    Idle,
		history:  []State{Idle},
		input:    QueryInput{MaxRecords: opts.MaxRecords},
	}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// History returns every state entered, in order, starting with Idle.
func (s *Session) History() []State {
	return append([]State(nil), s.history...)
}

// Run steps the machine until Done. A prompt error or a cancelled context
// stops it early; nothing is exported in that case.
func (s *Session) Run(ctx context.Context) (Result, error) {
	for s.state != Done {
		if err := ctx.Err(); err != nil {
			return s.result, err
		}
		next, err := s.step(ctx)
		if err != nil {
			return s.result, err
		}
		s.enter(next)
	}
	return s.result, nil
}

func (s *Session) enter(next State) {
	if next != s.state {
		s.opts.Logger.Debug().Stringer("from", s.state).Stringer("to", next).Msg("session transition")
	}
	s.state = next
	s.history = append(s.history, next)
}

func (s *Session) step(ctx context.Context) (State, error) {
	switch s.state {
	case Idle:
		return s.askEmail(ctx)
	case EmailConfirmed:
		return Searching, nil
	case Searching:
		return s.search(ctx)
	case Fetching:
		return s.fetch(ctx)
	case Exporting:
		return s.export(ctx)
	}
	return Done, nil
}

func (s *Session) askEmail(ctx context.Context) (State, error) {
	email, err := s.prompter.Email(ctx)
	if err != nil {
		return Idle, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		s.prompter.Notify("Sorry, an email is required to use this program.")
		return Idle, nil
	}
	ok, err := s.prompter.Confirm(ctx, fmt.Sprintf("Email received, confirm? %s", email))
	if err != nil {
		return Idle, err
	}
	if !ok {
		return Idle, nil
	}
	s.result.Email = email
	return EmailConfirmed, nil
}

func (s *Session) search(ctx context.Context) (State, error) {
	in, err := s.prompter.Query(ctx, s.input)
	if err != nil {
		return Searching, err
	}
	s.input = in

	q, err := s.buildQuery(in)
	if err == nil {
		var ids types.IdentifierList
		ids, err = s.runner.Search(ctx, s.result.Email, q)
		if err == nil {
			s.result.Query = q
			s.result.IDs = ids
		}
	}
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Searching, err
	case errors.Is(err, search.ErrNoMatches):
		s.prompter.Notify("No PMIDs matching search term. Restarting query.")
		return Searching, nil
	case errors.Is(err, search.ErrInvalidQuery), errors.Is(err, search.ErrSearchFailed):
		s.prompter.Notify(fmt.Sprintf("%v. Restarting query.", err))
		return Searching, nil
	default:
		return Searching, err
	}

	ok, err := s.prompter.Confirm(ctx,
		fmt.Sprintf("%d PMIDs collected and saved. Continue to fetch abstracts?", len(s.result.IDs)))
	if err != nil {
		return Searching, err
	}
	if !ok {
		return Done, nil
	}
	return Fetching, nil
}

func (s *Session) buildQuery(in QueryInput) (types.SearchQuery, error) {
	minDate, maxDate, err := search.ParseDateRange(in.From, in.To)
	if err != nil {
		return types.SearchQuery{}, err
	}
	q := types.SearchQuery{
		Term:       strings.TrimSpace(in.Term),
		MinDate:    minDate,
		MaxDate:    maxDate,
		MaxRecords: in.MaxRecords,
		Database:   s.opts.Database,
	}
	if err := search.Validate(q); err != nil {
		return types.SearchQuery{}, err
	}
	return q, nil
}

func (s *Session) fetch(ctx context.Context) (State, error) {
	records, err := s.runner.Fetch(ctx, s.result.Email, s.result.IDs)
	if err != nil {
		return Fetching, err
	}
	s.result.Records = records
	return Exporting, nil
}

func (s *Session) export(ctx context.Context) (State, error) {
	ok, err := s.prompter.Confirm(ctx, "Articles are fetched. Create a CSV file?")
	if err != nil {
		return Exporting, err
	}
	if !ok {
		s.prompter.Notify("CSV file NOT created. Goodbye!")
		return Done, nil
	}

	name, err := s.prompter.Filename(ctx)
	if err != nil {
		return Exporting, err
	}
	path, err := s.runner.Export(ctx, s.result.Query.Term, s.result.Records, name)
	if err != nil {
		if ctx.Err() != nil {
			return Exporting, ctx.Err()
		}
		s.prompter.Notify(fmt.Sprintf("Export failed: %v", err))
		return Exporting, nil
	}
	s.result.Exported = path
	s.prompter.Notify(fmt.Sprintf("Finished, %s created. Thank you and goodbye!", path))
	return Done, nil
}
