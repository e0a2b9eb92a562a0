package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

const dateLayout = "2006-01-02"

func invalidParam(name string, err error) error {
	return &perrors.Error{Code: perrors.EInvalid, Msg: fmt.Sprintf("invalid %s parameter: %v", name, err)}
}

// decodePage reads offset, limit, sort and order from the query string
func decodePage(q url.Values) (repositories.Page, error) {
	var page repositories.Page
	var err error
	if page.Offset, err = intParam(q, "offset"); err != nil {
		return page, err
	}
	if page.Limit, err = intParam(q, "limit"); err != nil {
		return page, err
	}
	if page.Offset < 0 || page.Limit < 0 {
		return page, &perrors.Error{Code: perrors.EInvalid, Msg: "offset and limit cannot be negative"}
	}
	page.Sort = q.Get("sort")
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		page.Desc = true
	default:
		return page, invalidParam("order", fmt.Errorf("expected asc or desc, got %q", q.Get("order")))
	}
	return page, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalidParam(name, err)
	}
	return n, nil
}

// timeParam accepts RFC3339 or a plain date. With endOfDay a plain date
// covers the whole day.
func timeParam(q url.Values, name string, endOfDay bool) (time.Time, error) {
	v := q.Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, invalidParam(name, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", v))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// decodeRange reads the from and to parameters of report endpoints
func decodeRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from, err := timeParam(q, "from", false)
	if err != nil {
		return from, time.Time{}, err
	}
	to, err := timeParam(q, "to", true)
	return from, to, err
}

// enumParam parses an optional enum filter, returning nil when absent
func enumParam[T any](q url.Values, name string, parse func(string) (T, error)) (*T, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	parsed, err := parse(v)
	if err != nil {
		return nil, invalidParam(name, err)
	}
	return &parsed, nil
}
