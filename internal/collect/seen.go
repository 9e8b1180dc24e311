// CLAUDE:SUMMARY Caller-owned seen-URL set: append-only within a run, serialisable as a list of strings.
package collect

// SeenSet tracks URLs already processed in this or prior runs. It is owned
// by the caller, grows append-only, and a URL present in it is never
// re-queried or re-scraped for the set's lifetime.
//
// All writes happen in the serial collection stage, before fan-out begins,
// so no locking is needed.
type SeenSet struct {
	urls map[string]struct{}
}

// NewSeenSet builds a set from previously persisted URLs. Entries are
// normalised so lookups match the collector's dedup keys.
func NewSeenSet(urls []string) *SeenSet {
	s := &SeenSet{urls: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		s.Add(u)
	}
	return s
}

// Has reports whether the URL is already known.
func (s *SeenSet) Has(raw string) bool {
	key, err := NormalizeURL(raw)
	if err != nil {
		key = raw
	}
	_, ok := s.urls[key]
	return ok
}

// Add records a URL. Adding an existing URL is a no-op.
func (s *SeenSet) Add(raw string) {
	key, err := NormalizeURL(raw)
	if err != nil {
		key = raw
	}
	s.urls[key] = struct{}{}
}

// Len returns the number of known URLs.
func (s *SeenSet) Len() int { return len(s.urls) }
