// Package listutil parses the listing parameters shared by the JSON API:
// limit/offset paging and bounded integer query values.
package listutil

import (
	"fmt"
	"net/url"
	"strconv"

	"studio/internal/domain/errs"
)

// Page is a limit/offset window over an ordered listing.
type Page struct {
	Limit  int
	Offset int
}

// IntParam reads q[key] as an integer no smaller than floor.
// An absent or empty value yields def.
// POST: returned value >= floor, or an errs.ErrValidation error naming key
func IntParam(q url.Values, key string, def, floor int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < floor {
		return 0, fmt.Errorf("%w: %s must be an integer of at least %d", errs.ErrValidation, key, floor)
	}
	return n, nil
}

// ParsePage reads limit and offset from q.
// PRE: 0 < defaultLimit <= maxLimit
// POST: 1 <= Limit <= maxLimit, Offset >= 0
func ParsePage(q url.Values, defaultLimit, maxLimit int) (Page, error) {
	limit, err := IntParam(q, "limit", defaultLimit, 1)
	if err != nil {
		return Page{}, err
	}
	offset, err := IntParam(q, "offset", 0, 0)
	if err != nil {
		return Page{}, err
	}
	return Page{Limit: min(limit, maxLimit), Offset: offset}, nil
}
