package request

import (
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"
)

// Pagination is the page/limit pair of a list query. Zero means "use the default".
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads ?page= and ?limit=. Missing values stay zero.
func ParsePagination(r *http.Request) (Pagination, error) {
	var p Pagination
	q := r.URL.Query()
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"page", &p.Page},
		{"limit", &p.Limit},
	} {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Pagination{}, eris.Errorf("%s must be a positive integer", f.name)
		}
		*f.dst = n
	}
	return p, nil
}
