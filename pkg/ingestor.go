package pkg

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/pointcloud_core/internal/bucket"
	"github.com/ecopia-map/pointcloud_core/internal/converters"
	"github.com/ecopia-map/pointcloud_core/internal/extent"
	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/ecopia-map/pointcloud_core/internal/las"
	"github.com/ecopia-map/pointcloud_core/internal/parser"
	"github.com/ecopia-map/pointcloud_core/pkg/algorithm_manager"
	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/ecopia-map/pointcloud_core/pkg/gradient"
	"github.com/ecopia-map/pointcloud_core/pkg/model"
	"github.com/golang/geo/r3"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	ErrUnreadableInput     = parser.ErrUnreadableInput
	ErrEmptyDataset        = extent.ErrEmptyDataset
	ErrUnknownGradientName = gradient.ErrUnknownGradientName
	ErrUnsupportedSrid     = converters.ErrUnsupportedSrid
	ErrConversionFailed    = converters.ErrConversionFailed
)

type (
	Options              = ingest.Options
	Stats                = parser.Stats
	MalformedRecordError = parser.MalformedRecordError
	Batch                = parser.Batch
	BatchHeader          = parser.Header
	RawPoint             = parser.RawPoint
	MemoryBatch          = parser.MemoryBatch
)

type IIngestor interface {
	IngestText(ctx context.Context, r io.Reader, source string) (*Result, error)
	IngestBinary(ctx context.Context, batch Batch, source string) (*Result, error)
	IngestFile(ctx context.Context, filePath string) (*Result, error)
}

// Result is a published model together with what happened to the input entries
type Result struct {
	Model *model.PointCloudModel
	Stats Stats
	// Unconverted counts records the coordinate converter rejected
	Unconverted int
}

type Ingestor struct {
	options          *ingest.Options
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewIngestor(opts *ingest.Options, algorithmManager algorithm_manager.AlgorithmManager) *Ingestor {
	return &Ingestor{
		options:          opts.Copy(),
		algorithmManager: algorithmManager,
	}
}

// IngestText builds a model out of whitespace separated records
func (in *Ingestor) IngestText(ctx context.Context, r io.Reader, source string) (*Result, error) {
	parsed, err := parser.ParseText(ctx, r, parser.TextOptions{OnMalformed: in.malformedReporter(source)})
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", source)
	}
	return in.build(ctx, parsed, r3.Vector{}, source)
}

// IngestBinary builds a model out of a decoded binary batch. Positions stay relative to the
// batch's minimum corner.
func (in *Ingestor) IngestBinary(ctx context.Context, batch Batch, source string) (*Result, error) {
	parsed, err := parser.ParseBinary(ctx, batch, parser.BinaryOptions{
		ColorDepth:  in.options.ColorDepth,
		OnMalformed: in.malformedReporter(source),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", source)
	}
	return in.build(ctx, parsed, batch.Header().Min, source)
}

// IngestFile dispatches on the file extension: .las files are decoded as binary batches,
// everything else is read as text
func (in *Ingestor) IngestFile(ctx context.Context, filePath string) (res *Result, err error) {
	source := filepath.Base(filePath)
	if strings.EqualFold(filepath.Ext(filePath), ".las") {
		batch, openErr := las.Open(filePath)
		if openErr != nil {
			return nil, openErr
		}
		defer func() {
			err = multierr.Combine(err, batch.Close())
		}()
		return in.IngestBinary(ctx, batch, source)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadableInput, "opening %s: %v", filePath, err)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return in.IngestText(ctx, f, source)
}

func (in *Ingestor) build(ctx context.Context, parsed *parser.Result, origin r3.Vector, source string) (*Result, error) {
	records := data.FilterFinite(parsed.Records)
	stats := parsed.Stats
	if filtered := len(parsed.Records) - len(records); filtered > 0 {
		stats.Accepted -= filtered
		stats.Dropped += filtered
	}

	converted, origin, err := in.transform(records, origin)
	if err != nil {
		return nil, errors.Wrap(err, source)
	}
	unconverted := len(records) - len(converted)
	if unconverted > 0 {
		stats.Accepted -= unconverted
		glog.Warningf("%s: %d records could not be converted to EPSG:%d", source, unconverted, in.options.TargetSrid)
	}
	if len(records) > 0 && len(converted) == 0 {
		return nil, errors.Wrapf(ErrConversionFailed, "%s: none of %d records could be converted", source, len(records))
	}
	records = converted
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext, err := extent.Compute(records)
	if err != nil {
		return nil, errors.Wrap(err, source)
	}
	buckets, err := bucket.Bucketize(ctx, records, ext.Centroid)
	if err != nil {
		return nil, err
	}

	m, err := model.New(model.Params{
		Source:         source,
		Origin:         origin,
		Centroid:       ext.Centroid,
		Bounds:         ext.Bounds,
		Centered:       ext.Centered,
		Buckets:        buckets,
		HasIntensity:   ext.HasIntensity,
		IntensityMin:   ext.IntensityMin,
		IntensityMax:   ext.IntensityMax,
		Gradients:      in.algorithmManager.GetGradientRegistry(),
		Gradient:       in.options.Gradient,
		GradientSource: in.options.GradientSource,
	})
	if err != nil {
		return nil, err
	}

	if stats.Dropped > 0 {
		glog.Infof("%s: dropped %d malformed records", source, stats.Dropped)
	}
	glog.V(1).Infof("%s: %d points in %d classes, centroid %v", source, m.TotalPoints(), len(m.ClassesPresent()), ext.Centroid)
	return &Result{Model: m, Stats: stats, Unconverted: unconverted}, nil
}

// transform reprojects and corrects elevation. Positions relative to a non-zero origin, as binary
// input is, are moved back to absolute coordinates first, then made relative to the converted
// origin again. It returns the kept records and the origin they are now relative to.
func (in *Ingestor) transform(records []data.Record, origin r3.Vector) ([]data.Record, r3.Vector, error) {
	converter := in.algorithmManager.GetCoordinateConverterAlgorithm()
	corrector := in.algorithmManager.GetElevationCorrectionAlgorithm()
	reproject := in.options.Reprojects()

	newOrigin := origin
	if reproject && origin != (r3.Vector{}) {
		converted, err := converter.ConvertCoordinateSrid(in.options.SourceSrid, in.options.TargetSrid, origin)
		if err != nil {
			return nil, origin, errors.Wrapf(ErrConversionFailed, "origin %v: %v", origin, err)
		}
		newOrigin = converted
	}

	out := make([]data.Record, 0, len(records))
	for _, rec := range records {
		p := rec.Position.Add(origin)
		if !reproject {
			// only the elevation moves, keep the local frame precision for x and y
			rec.Position.Z += corrector.CorrectElevation(p.X, p.Y, p.Z) - p.Z
			if rec.IsFinite() {
				out = append(out, rec)
			}
			continue
		}
		converted, err := converter.ConvertCoordinateSrid(in.options.SourceSrid, in.options.TargetSrid, p)
		if err != nil {
			continue
		}
		p = converted
		p.Z = corrector.CorrectElevation(p.X, p.Y, p.Z)
		rec.Position = p.Sub(newOrigin)
		if rec.IsFinite() {
			out = append(out, rec)
		}
	}
	return out, newOrigin, nil
}

// malformedReporter logs the first dropped records of an input individually
func (in *Ingestor) malformedReporter(source string) parser.MalformedFunc {
	reported := 0
	limit := in.options.MaxReportedMalformed
	return func(e parser.MalformedRecordError) {
		reported++
		if reported <= limit {
			glog.Warningf("%s: %v", source, e)
		} else if reported == limit+1 {
			glog.Warningf("%s: further malformed records are only counted", source)
		}
	}
}

// Cleanup releases the resources held by the coordinate converter
func (in *Ingestor) Cleanup() {
	in.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()
}
