package io

import (
	"github.com/ecopia-map/pointcloud_core/internal/parser"
	"github.com/ecopia-map/pointcloud_core/pkg/model"
)

// Contains the minimal data needed to ingest and summarize a single point file
type WorkUnit struct {
	Index    int
	FilePath string
}

// FileReport is what a consumer produces for one WorkUnit. Err is set when the file could not
// be turned into a model, in which case Summary is the zero value.
type FileReport struct {
	Index    int           `json:"-"`
	FilePath string        `json:"file"`
	Summary  model.Summary `json:"summary"`
	Stats    parser.Stats  `json:"stats"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}
