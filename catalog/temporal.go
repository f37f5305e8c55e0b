package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// isoLayout is the ISO-8601-Z layout the -t/--temporalrange flag and the
// CMR revision_date parameter both use.
const isoLayout = "2006-01-02T15:04:05Z"

// windowDays is the catalog query window width, matching
// original_source/datagen/S3List.py:generate_time_search's 30-day step.
const windowDays = 30.0

// Window is one "start,end" sub-range of a larger temporal range.
type Window struct {
	Start string
	End   string
}

// SplitTemporalRange splits a "start,end" ISO-8601-Z pair into consecutive
// windows no wider than 30 days, so a single CMR query never has to span
// an unbounded revision-date range. Calendar stepping goes through Julian
// Day numbers via soniakeys/meeus/v3/julian rather than raw duration
// arithmetic, the same package and idiom the teacher uses for its own
// day-of-year/calendar conversions (decode/params.go).
//
// Unlike the original, the final window's end is simply the requested end
// timestamp (not a separately-added trailing-hours offset onto a
// date-only boundary) — the two are equivalent in effect and this avoids
// reconstructing the original's date/time split.
func SplitTemporalRange(rangeStr string) ([]Window, error) {
	parts := strings.SplitN(rangeStr, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: expected \"start,end\": %q", ErrMalformedTemporalRange, rangeStr)
	}

	start, err := time.Parse(isoLayout, parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: parsing start: %v", ErrMalformedTemporalRange, err)
	}
	end, err := time.Parse(isoLayout, parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: parsing end: %v", ErrMalformedTemporalRange, err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end %s is not after start %s", ErrMalformedTemporalRange, parts[1], parts[0])
	}

	var windows []Window
	cur := start
	for {
		next := julian.JDToTime(julian.TimeToJD(cur) + windowDays)
		if !next.Before(end) {
			windows = append(windows, Window{Start: cur.Format(isoLayout), End: end.Format(isoLayout)})
			break
		}
		windows = append(windows, Window{Start: cur.Format(isoLayout), End: next.Format(isoLayout)})
		cur = next
	}
	return windows, nil
}
