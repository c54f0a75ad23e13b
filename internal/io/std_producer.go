package io

import (
	"context"
	"sync"
)

type StandardProducer struct {
	files []string
}

func NewStandardProducer(files []string) *StandardProducer {
	return &StandardProducer{
		files: files,
	}
}

// Submits one WorkUnit per file to the provided work channel, in order.
// Closes the channel when all work is submitted or ctx is done.
func (p *StandardProducer) Produce(ctx context.Context, work chan *WorkUnit, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(work)

	for i, filePath := range p.files {
		select {
		case work <- &WorkUnit{Index: i, FilePath: filePath}:
		case <-ctx.Done():
			return
		}
	}
}
