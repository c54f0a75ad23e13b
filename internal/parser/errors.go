package parser

import (
	"fmt"

	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/pkg/errors"
)

// ErrUnreadableInput marks input that is structurally corrupt as a whole. An ingest hitting it fails.
var ErrUnreadableInput = errors.New("unreadable input")

// MalformedRecordError describes a single line or point that was dropped
type MalformedRecordError struct {
	Index  int // 1-based line number in text mode, 0-based point index in binary mode
	Reason string
}

func (e MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %d: %s", e.Index, e.Reason)
}

// Stats counts what happened to the entries of an input
type Stats struct {
	Accepted int `json:"accepted"` // records that reached the model
	Dropped  int `json:"dropped"`
	Skipped  int `json:"skipped"` // blank and comment lines
}

// Result is the flat, ordered record sequence produced by a parser
type Result struct {
	Records []data.Record
	Stats   Stats
}

// MalformedFunc receives every dropped record. It must not retain the parser's state.
type MalformedFunc func(MalformedRecordError)

func (r *Result) drop(fn MalformedFunc, index int, reason string) {
	r.Stats.Dropped++
	if fn != nil {
		fn(MalformedRecordError{Index: index, Reason: reason})
	}
}

func (r *Result) accept(rec data.Record) {
	r.Records = append(r.Records, rec)
	r.Stats.Accepted++
}
