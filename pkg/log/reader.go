package log

import (
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter specifies criteria for filtering log events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// SequenceID filters by exact sequence ID match.
	SequenceID string

	// Rail filters by rail name.
	Rail string

	// Op filters by operation.
	Op *Op

	// Stage filters by sequence stage.
	Stage *Stage

	// Category filters by event category.
	Category *Category

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// Matches returns true if the event matches all filter criteria.
func (f *Filter) Matches(event Event) bool {
	if f.SequenceID != "" && event.SequenceID != f.SequenceID {
		return false
	}
	if f.Rail != "" && event.Rail != f.Rail {
		return false
	}
	if f.Op != nil && event.Op != *f.Op {
		return false
	}
	if f.Stage != nil && event.Stage != *f.Stage {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader streams events from a .glog journal, skipping those the filter
// rejects.
type Reader struct {
	src     io.Closer
	dec     *cbor.Decoder
	filter  Filter
	scanned int
}

// NewReader opens a journal and returns every event in it.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens a journal and returns only events matching
// filter. The path "-" reads standard input.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	if path == "-" {
		return NewStreamReader(io.NopCloser(os.Stdin), filter), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewStreamReader(f, filter), nil
}

// NewStreamReader reads events from rc. Close closes rc.
func NewStreamReader(rc io.ReadCloser, filter Filter) *Reader {
	return &Reader{src: rc, dec: NewDecoder(rc), filter: filter}
}

// Next returns the next matching event, or io.EOF at the end of the journal.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.dec.Decode(&event); err != nil {
			return Event{}, err
		}
		r.scanned++
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Scanned returns how many events were decoded so far, filtered or not.
func (r *Reader) Scanned() int { return r.scanned }

// Close closes the underlying source.
func (r *Reader) Close() error {
	return r.src.Close()
}
