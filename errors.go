// CLAUDE:SUMMARY Sentinel errors for the presswatch service: empty watch-list, no candidates, report not found.
package presswatch

import (
	"errors"

	"github.com/hazyhaar/presswatch/internal/collect"
	"github.com/hazyhaar/presswatch/internal/store"
)

// ErrEmptyWatchlist is returned when a run is requested with no entities.
var ErrEmptyWatchlist = errors.New("presswatch: watch-list is empty")

// ErrNoCandidates is returned by the collection stage when every entity
// yielded zero fresh candidates. A Run still produces a placeholder report.
var ErrNoCandidates = collect.ErrNoCandidates

// ErrReportNotFound is returned when looking up an unknown report id.
var ErrReportNotFound = store.ErrNotFound
