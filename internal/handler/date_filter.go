package handler

import (
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseDateRange reads the from/to query pair and rejects inverted ranges.
func parseDateRange(r *http.Request) (from, to *time.Time, err error) {
	from, err = parseDateQuery(r, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err = parseDateQuery(r, "to")
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, errInvertedRange
	}
	// Make "to" inclusive of the whole day.
	if to != nil {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

type rangeError string

func (e rangeError) Error() string { return string(e) }

const errInvertedRange = rangeError("from must be before to")
