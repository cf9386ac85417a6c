// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks q against the SearchQuery invariants and returns an error
// wrapping ErrInvalidQuery that names every broken rule.
func Validate(q types.SearchQuery) error {
	if strings.TrimSpace(q.Term) == "" {
		return fmt.Errorf("%w: search term is empty", ErrInvalidQuery)
	}
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Field() + "." + fe.Tag() {
	case "MinDate.required_with", "MaxDate.required_with":
		return "start and end dates must be given together"
	case "MaxDate.gtefield":
		return "end date is before start date"
	case "MaxRecords.gt":
		return "maximum record count must be positive"
	case "Database.required":
		return "database is empty"
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// ParseDateRange parses optional start and end dates in YYYY/MM/DD form.
// Both empty means no range. Exactly one empty, or a malformed date, is an
// ErrInvalidQuery.
func ParseDateRange(from, to string) (time.Time, time.Time, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return time.Time{}, time.Time{}, nil
	}
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start and end dates must be given together", ErrInvalidQuery)
	}
	minDate, err := ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	maxDate, err := ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return minDate, maxDate, nil
}

// ParseDate parses a single YYYY/MM/DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(types.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY/MM/DD", ErrInvalidQuery, s)
	}
	return t, nil
}
