package pkg

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/ecopia-map/pointcloud_core/internal/io"
	"github.com/ecopia-map/pointcloud_core/internal/parser"
	"github.com/ecopia-map/pointcloud_core/pkg/model"
	"github.com/ecopia-map/pointcloud_core/tools"
	"github.com/pkg/errors"
)

type FileReport = io.FileReport

type ISummarizer interface {
	RunSummary(ctx context.Context, opts *ingest.Options) ([]*FileReport, error)
}

// Summarizer ingests many files concurrently and reports a summary for each of them
type Summarizer struct {
	fileFinder tools.FileFinder
	ingestor   IIngestor
	workers    int
}

// NewSummarizer returns a summarizer running the given number of consumers, one per CPU when
// workers is not positive
func NewSummarizer(fileFinder tools.FileFinder, ingestor IIngestor, workers int) ISummarizer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Summarizer{
		fileFinder: fileFinder,
		ingestor:   ingestor,
		workers:    workers,
	}
}

// RunSummary returns one report per input file, in file order. Files failing to ingest are
// reported with their error; only failing to list the inputs fails the whole run. A cancelled
// run returns the reports finished so far, in file order too.
func (s *Summarizer) RunSummary(ctx context.Context, opts *ingest.Options) ([]*FileReport, error) {
	files, err := s.fileFinder.GetPointFilesToProcess(opts)
	if err != nil {
		return nil, errors.Wrap(err, "listing input files")
	}
	tools.LogOutput("Preparing summary of", len(files), "files...")

	ingestFile := func(ctx context.Context, filePath string) (*model.PointCloudModel, parser.Stats, error) {
		res, err := s.ingestor.IngestFile(ctx, filePath)
		if err != nil {
			return nil, parser.Stats{}, err
		}
		return res.Model, res.Stats, nil
	}

	workChannel := make(chan *io.WorkUnit, s.workers)
	reportChannel := make(chan *io.FileReport, s.workers)

	var producerWaitGroup sync.WaitGroup
	producerWaitGroup.Add(1)
	go io.NewStandardProducer(files).Produce(ctx, workChannel, &producerWaitGroup)

	var consumerWaitGroup sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		consumerWaitGroup.Add(1)
		go io.NewStandardConsumer(ingestFile).Consume(ctx, workChannel, reportChannel, &consumerWaitGroup)
	}

	go func() {
		consumerWaitGroup.Wait()
		close(reportChannel)
	}()

	reports := make([]*FileReport, 0, len(files))
	for report := range reportChannel {
		tools.LogOutput("> done", report.FilePath)
		reports = append(reports, report)
	}
	producerWaitGroup.Wait()

	sort.Slice(reports, func(i, j int) bool { return reports[i].Index < reports[j].Index })
	if err := ctx.Err(); err != nil {
		return reports, err
	}
	return reports, nil
}
