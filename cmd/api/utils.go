package main

import (
	"fmt"
	"net/url"
	"strconv"
)

// parsePage reads ?page=, defaulting to the first page.
func parsePage(q url.Values) (int, error) {
	raw := q.Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("invalid page %q", raw)
	}
	return page, nil
}

// parseOptionalID reads an id filter; absent means no filter.
func parseOptionalID(q url.Values, key string) (*int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &id, nil
}

func parseLimit(q url.Values, fallback, ceiling int) (int, error) {
	raw := q.Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if limit > ceiling {
		limit = ceiling
	}
	return limit, nil
}
