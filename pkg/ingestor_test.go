package pkg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecopia-map/pointcloud_core/internal/converters"
	"github.com/ecopia-map/pointcloud_core/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/ecopia-map/pointcloud_core/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/pointcloud_core/pkg/classification"
	"github.com/ecopia-map/pointcloud_core/pkg/gradient"
	"github.com/ecopia-map/pointcloud_core/pkg/model"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIngestor(t *testing.T, opts *ingest.Options) *Ingestor {
	t.Helper()
	algorithmManager, err := std_algorithm_manager.NewAlgorithmManager(opts, nil)
	require.NoError(t, err)
	return NewIngestor(opts, algorithmManager)
}

func ingestString(t *testing.T, opts *ingest.Options, input string) (*Result, error) {
	t.Helper()
	return newTestIngestor(t, opts).IngestText(context.Background(), strings.NewReader(input), "test.txt")
}

func TestIngestCentersOnCentroid(t *testing.T) {
	res, err := ingestString(t, ingest.DefaultOptions(), "2 10 20 30\n2 12 22 34\n")
	require.NoError(t, err)

	m := res.Model
	assert.Equal(t, r3.Vector{X: 11, Y: 21, Z: 32}, m.Centroid())
	assert.Equal(t, []classification.Code{classification.Ground}, m.ClassesPresent())
	ground, ok := m.Bucket(classification.Ground)
	require.True(t, ok)
	assert.Equal(t, []r3.Vector{{X: -1, Y: -1, Z: -2}, {X: 1, Y: 1, Z: 2}}, ground.Positions())
	assert.Equal(t, model.ColorModeFlat, m.ColorMode())
	assert.Equal(t, "test.txt", m.Source())

	zMin, zMax := m.ZExtent()
	assert.Equal(t, -2.0, zMin)
	assert.Equal(t, 2.0, zMax)
}

func TestIngestSkipsCommentsAndBlankLines(t *testing.T) {
	res, err := ingestString(t, ingest.DefaultOptions(), "# comment\n\n1 2 3\n")
	require.NoError(t, err)

	m := res.Model
	assert.Equal(t, 1, m.TotalPoints())
	assert.Equal(t, []classification.Code{classification.Unclassified}, m.ClassesPresent())
	assert.Equal(t, model.ColorModeGradient, m.ColorMode(), "only unclassified points without colors")
	assert.Equal(t, Stats{Accepted: 1, Skipped: 2}, res.Stats)
}

func TestIngestDropsMalformedLines(t *testing.T) {
	res, err := ingestString(t, ingest.DefaultOptions(), "1 2\n2 1 1 1\n")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Model.TotalPoints())
	assert.Equal(t, 1, res.Stats.Dropped)
}

func TestIngestKeepsEveryPoint(t *testing.T) {
	input := "0 1 1 1\n2 2 2 2\n6 3 3 3 255 0 0\n7 100 100 100\n42 4 4 4\n9 5 5 5\n"
	res, err := ingestString(t, ingest.DefaultOptions(), input)
	require.NoError(t, err)

	m := res.Model
	assert.Equal(t, 6, m.TotalPoints())
	assert.Equal(t, res.Stats.Accepted, m.TotalPoints())
	unclassified, _ := m.Bucket(classification.Unclassified)
	assert.Equal(t, 2, unclassified.Count(), "code 42 falls back to unclassified")
	// false points are drawn but not part of the centroid
	assert.Equal(t, r3.Vector{X: 3, Y: 3, Z: 3}, m.Centroid())
	assert.Equal(t, []classification.Code{classification.Roofs}, m.ClassesWithColor())

	for _, code := range m.ClassesPresent() {
		b, _ := m.Bucket(code)
		for _, p := range b.Positions() {
			world := m.WorldPosition(p)
			assert.True(t, m.Bounds().Contains(world) || code == classification.FalsePoints, "%v outside bounds", world)
		}
	}
}

func TestIngestEmptyDataset(t *testing.T) {
	for name, input := range map[string]string{
		"no data":           "",
		"only comments":     "# a\n# b\n",
		"only false points": "7 1 2 3\n7 4 5 6\n",
		"only malformed":    "1 2\nfoo bar baz\n",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := ingestString(t, ingest.DefaultOptions(), input)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrEmptyDataset), "got %v", err)
		})
	}
}

func TestIngestUnknownGradient(t *testing.T) {
	opts := ingest.DefaultOptions()
	opts.Gradient = "NOPE"
	_, err := ingestString(t, opts, "1 2 3\n")
	assert.True(t, errors.Is(err, ErrUnknownGradientName))
}

func TestIngestZOffset(t *testing.T) {
	opts := ingest.DefaultOptions()
	opts.ZOffset = 10
	res, err := ingestString(t, opts, "2 10 20 30\n2 12 22 34\n")
	require.NoError(t, err)
	assert.Equal(t, r3.Vector{X: 11, Y: 21, Z: 42}, res.Model.Centroid())
	// offsets move the centroid, not the centered geometry
	zMin, zMax := res.Model.ZExtent()
	assert.Equal(t, -2.0, zMin)
	assert.Equal(t, 2.0, zMax)
}

func TestIngestBinary(t *testing.T) {
	batch := &MemoryBatch{
		Head: BatchHeader{
			Scale:  r3.Vector{X: 0.5, Y: 0.5, Z: 0.5},
			Offset: r3.Vector{X: 500000, Y: 4000000, Z: 0},
			Min:    r3.Vector{X: 500000, Y: 4000000, Z: 100},
		},
		Points: []RawPoint{
			{X: 0, Y: 0, Z: 200, Classification: 2, HasClassification: true, R: 255, HasColor: true},
			{X: 4, Y: 4, Z: 204, Classification: 2, HasClassification: true, G: 255, HasColor: true},
		},
	}
	res, err := newTestIngestor(t, ingest.DefaultOptions()).IngestBinary(context.Background(), batch, "mem")
	require.NoError(t, err)

	m := res.Model
	assert.Equal(t, r3.Vector{X: 1, Y: 1, Z: 1}, m.Centroid(), "centroid in the file local frame")
	assert.Equal(t, r3.Vector{X: 500000, Y: 4000000, Z: 100}, m.Origin())
	assert.Equal(t, r3.Vector{X: 500002, Y: 4000002, Z: 102}, m.WorldPosition(r3.Vector{X: 1, Y: 1, Z: 1}))

	ground, ok := m.Bucket(classification.Ground)
	require.True(t, ok)
	require.True(t, ground.HasColors())
	assert.Equal(t, 1.0, ground.Colors()[0].R, "8 bit colors detected")
}

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cloud.xyz")
	require.NoError(t, os.WriteFile(path, []byte("2 10 20 30\n2 12 22 34\n"), 0644))

	in := newTestIngestor(t, ingest.DefaultOptions())
	res, err := in.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "cloud.xyz", res.Model.Source())
	assert.Equal(t, 2, res.Model.TotalPoints())

	_, err = in.IngestFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.Is(err, ErrUnreadableInput))

	_, err = in.IngestFile(context.Background(), filepath.Join(dir, "missing.las"))
	assert.True(t, errors.Is(err, ErrUnreadableInput))
}

func TestIngestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestIngestor(t, ingest.DefaultOptions()).IngestText(ctx, strings.NewReader("1 2 3\n"), "x")
	assert.True(t, errors.Is(err, context.Canceled))
}

// shifts x by the target srid and refuses negative x
type fakeConverter struct{}

func (fakeConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord r3.Vector) (r3.Vector, error) {
	if coord.X < 0 {
		return r3.Vector{}, errors.New("outside projection area")
	}
	coord.X += float64(targetSrid)
	return coord, nil
}

func (fakeConverter) Cleanup() {}

type fakeAlgorithmManager struct{}

func (fakeAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return offset_elevation_corrector.NewOffsetElevationCorrector(0)
}

func (fakeAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return fakeConverter{}
}

func (fakeAlgorithmManager) GetGradientRegistry() *gradient.Registry {
	return gradient.Default()
}

func TestIngestReprojection(t *testing.T) {
	opts := ingest.DefaultOptions()
	opts.TargetSrid = 100
	in := NewIngestor(opts, fakeAlgorithmManager{})

	res, err := in.IngestText(context.Background(), strings.NewReader("2 0 0 0\n2 -5 0 0\n2 2 0 0\n"), "proj")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Unconverted)
	assert.Equal(t, 2, res.Model.TotalPoints())
	assert.Equal(t, res.Model.TotalPoints(), res.Stats.Accepted)
	assert.Equal(t, r3.Vector{X: 101}, res.Model.Centroid())
}

func TestIngestReprojectionFailures(t *testing.T) {
	opts := ingest.DefaultOptions()
	opts.TargetSrid = 100
	in := NewIngestor(opts, fakeAlgorithmManager{})

	t.Run("no record converts", func(t *testing.T) {
		res, err := in.IngestText(context.Background(), strings.NewReader("2 -1 0 0\n2 -2 0 0\n"), "west")
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, ErrConversionFailed), "got %v", err)
		assert.False(t, errors.Is(err, ErrEmptyDataset))
	})

	t.Run("origin does not convert", func(t *testing.T) {
		batch := &MemoryBatch{
			Head: BatchHeader{
				Scale:  r3.Vector{X: 1, Y: 1, Z: 1},
				Offset: r3.Vector{X: -10},
				Min:    r3.Vector{X: -10},
			},
			Points: []RawPoint{{X: 20}, {X: 30}},
		}
		res, err := in.IngestBinary(context.Background(), batch, "west.las")
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, ErrConversionFailed), "got %v", err)
		assert.Contains(t, err.Error(), "origin")
	})
}

func TestIngestUnsupportedSrid(t *testing.T) {
	opts := ingest.DefaultOptions()
	opts.TargetSrid = 12345
	_, err := std_algorithm_manager.NewAlgorithmManager(opts, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedSrid), "got %v", err)

	opts.SourceSrid, opts.TargetSrid = 999, 3857
	_, err = std_algorithm_manager.NewAlgorithmManager(opts, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedSrid), "got %v", err)
}

type inputPoint struct {
	code  classification.Code
	world r3.Vector
}

// assertRecoversWorld checks that every bucket position, shifted back by the model, lands on the
// input point it came from. Buckets keep the input order of their class.
func assertRecoversWorld(t *testing.T, m *model.PointCloudModel, input []inputPoint) {
	t.Helper()
	expected := make(map[classification.Code][]r3.Vector)
	for _, p := range input {
		expected[p.code] = append(expected[p.code], p.world)
	}
	require.Len(t, m.ClassesPresent(), len(expected))
	for code, want := range expected {
		b, ok := m.Bucket(code)
		require.True(t, ok, code.String())
		require.Equal(t, len(want), b.Count(), code.String())
		for i, local := range b.Positions() {
			got := m.WorldPosition(local)
			assert.InDelta(t, want[i].X, got.X, 1e-6, "%s #%d x", code, i)
			assert.InDelta(t, want[i].Y, got.Y, 1e-6, "%s #%d y", code, i)
			assert.InDelta(t, want[i].Z, got.Z, 1e-6, "%s #%d z", code, i)
		}
	}
}

func TestIngestRecoversWorldPositions(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		input := "2 10 20 30\n6 11 22 33 255 0 0\n7 1000 -500 9000\n2 12 21 31\n0 13.5 19 29\n"
		res, err := ingestString(t, ingest.DefaultOptions(), input)
		require.NoError(t, err)

		assert.False(t, res.Model.Bounds().Contains(r3.Vector{X: 1000, Y: -500, Z: 9000}), "false point outside the bounds")
		assertRecoversWorld(t, res.Model, []inputPoint{
			{classification.Ground, r3.Vector{X: 10, Y: 20, Z: 30}},
			{classification.Roofs, r3.Vector{X: 11, Y: 22, Z: 33}},
			{classification.FalsePoints, r3.Vector{X: 1000, Y: -500, Z: 9000}},
			{classification.Ground, r3.Vector{X: 12, Y: 21, Z: 31}},
			{classification.Unclassified, r3.Vector{X: 13.5, Y: 19, Z: 29}},
		})
	})

	t.Run("binary", func(t *testing.T) {
		batch := &MemoryBatch{
			Head: BatchHeader{
				Scale:  r3.Vector{X: 0.01, Y: 0.01, Z: 0.01},
				Offset: r3.Vector{X: 500000, Y: 4000000, Z: 0},
				Min:    r3.Vector{X: 500000.5, Y: 4000001, Z: 95},
			},
			Points: []RawPoint{
				{X: 100, Y: 200, Z: 10000, Classification: 2, HasClassification: true},
				{X: -50, Y: 150, Z: 9600, Classification: 7, HasClassification: true},
				{X: 300, Y: 0, Z: 10100, Classification: 6, HasClassification: true},
				{X: 250, Y: 50, Z: 9900, Classification: 2, HasClassification: true},
			},
		}
		res, err := newTestIngestor(t, ingest.DefaultOptions()).IngestBinary(context.Background(), batch, "mem")
		require.NoError(t, err)

		assert.Equal(t, batch.Head.Min, res.Model.Origin())
		assertRecoversWorld(t, res.Model, []inputPoint{
			{classification.Ground, r3.Vector{X: 500001, Y: 4000002, Z: 100}},
			{classification.FalsePoints, r3.Vector{X: 499999.5, Y: 4000001.5, Z: 96}},
			{classification.Roofs, r3.Vector{X: 500003, Y: 4000000, Z: 101}},
			{classification.Ground, r3.Vector{X: 500002.5, Y: 4000000.5, Z: 99}},
		})
	})
}
