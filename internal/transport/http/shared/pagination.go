package shared

import (
	"net/url"
	"strconv"
	"strings"
)

type Pagination struct {
	Limit  int
	Offset int
}

// Page reads limit and offset from query. Missing values take the defaults
// and a limit above maxLimit is capped; anything that is not a usable integer
// is reported against its parameter.
func (v *Validator) Page(query url.Values, defaultLimit, maxLimit int) Pagination {
	page := Pagination{Limit: defaultLimit}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			v.Add("limit", "must be a positive integer")
		} else {
			page.Limit = n
		}
	}
	if raw := strings.TrimSpace(query.Get("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			v.Add("offset", "must be a non-negative integer")
		} else {
			page.Offset = n
		}
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}
