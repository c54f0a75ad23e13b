package io

import (
	"context"
	"sync"

	"github.com/ecopia-map/pointcloud_core/internal/parser"
	"github.com/ecopia-map/pointcloud_core/pkg/model"
	"github.com/golang/glog"
)

// IngestFunc turns a file into a model
type IngestFunc func(ctx context.Context, filePath string) (*model.PointCloudModel, parser.Stats, error)

type StandardConsumer struct {
	ingest IngestFunc
}

func NewStandardConsumer(ingest IngestFunc) *StandardConsumer {
	return &StandardConsumer{
		ingest: ingest,
	}
}

// Continually consumes WorkUnits submitted to a work channel producing one FileReport each.
// A file failing to ingest is reported and does not stop the consumer. Quits when the work
// channel is closed or ctx is done.
func (c *StandardConsumer) Consume(ctx context.Context, workchan chan *WorkUnit, reports chan<- *FileReport, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	for {
		var work *WorkUnit
		var ok bool
		select {
		case work, ok = <-workchan:
		case <-ctx.Done():
			return
		}
		if !ok {
			// channel was closed by producer
			return
		}

		report := c.doWork(ctx, work)
		select {
		case reports <- report:
		case <-ctx.Done():
			return
		}
	}
}

func (c *StandardConsumer) doWork(ctx context.Context, work *WorkUnit) *FileReport {
	report := &FileReport{Index: work.Index, FilePath: work.FilePath}
	m, stats, err := c.ingest(ctx, work.FilePath)
	report.Stats = stats
	if err != nil {
		glog.Warningf("cannot ingest %s: %v", work.FilePath, err)
		report.Err = err
		report.Error = err.Error()
		return report
	}
	report.Summary = m.Summary()
	return report
}
