package shared

import (
	"net/http"
	"strconv"
)

// ListFilters represents standard list filters shared by the master data
// endpoints.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	SortBy   string
	SortDir  string
	IsActive *bool

	// Entity specific filters
	FarmID *int64
	SiteID *int64
}

// FiltersFromRequest reads the common query parameters. Unknown or malformed
// values fall back to defaults rather than failing the request.
func FiltersFromRequest(r *http.Request) ListFilters {
	q := r.URL.Query()

	f := ListFilters{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		f.Limit = limit
	}
	if raw := q.Get("is_active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			f.IsActive = &active
		}
	}
	if raw := q.Get("farm_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.FarmID = &id
		}
	}
	if raw := q.Get("site_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.SiteID = &id
		}
	}
	return f
}
