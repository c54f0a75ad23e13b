package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ecopia-map/pointcloud_core/pkg/classification"
	"github.com/ecopia-map/pointcloud_core/pkg/data"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	commentChar = "#"

	// longer lines are dropped as malformed
	maxLineSize = 1 << 20

	// how many entries are processed between two cancellation checks
	checkInterval = 4096
)

// TextOptions tunes ParseText
type TextOptions struct {
	OnMalformed MalformedFunc
}

// ParseText reads a whitespace separated coordinate listing, one point per line.
// Accepted layouts are
//
//	x y z
//	class x y z
//	x y z r g b
//	class x y z r g b
//
// with 8 bit color components. Blank lines and lines starting with # are skipped, thousands
// separator commas are stripped. Lines with any other token count, or with a token that is not a
// finite number, are dropped and reported through OnMalformed.
func ParseText(ctx context.Context, r io.Reader, opts TextOptions) (*Result, error) {
	if r == nil {
		return nil, errors.Wrap(ErrUnreadableInput, "nil reader")
	}

	result := &Result{Records: make([]data.Record, 0, 1024)}
	reader := bufio.NewReaderSize(r, 64*1024)

	lineNumber := 0
	for {
		line, tooLong, readErr := readLine(reader)
		if readErr != nil && readErr != io.EOF {
			return nil, errors.Wrapf(ErrUnreadableInput, "line %d: %v", lineNumber+1, readErr)
		}
		if readErr == io.EOF && line == "" && !tooLong {
			break
		}

		lineNumber++
		if lineNumber%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "text parsing interrupted")
			}
		}

		if tooLong {
			result.drop(opts.OnMalformed, lineNumber, fmt.Sprintf("line longer than %d bytes", maxLineSize))
		} else {
			rec, skip, err := ParseLine(line)
			switch {
			case skip:
				result.Stats.Skipped++
			case err != nil:
				result.drop(opts.OnMalformed, lineNumber, err.Error())
			default:
				result.accept(rec)
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	return result, nil
}

// readLine returns the next line including its terminator. A line longer than maxLineSize is
// consumed up to its end and reported through tooLong, without its content.
func readLine(reader *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, readErr := reader.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if readErr == bufio.ErrBufferFull {
			continue
		}
		return string(buf), tooLong, readErr
	}
}

// ParseLine turns a single text line into a record. skip is true for blank and comment lines.
func ParseLine(line string) (rec data.Record, skip bool, err error) {
	line = strings.ReplaceAll(strings.TrimSpace(line), ",", "")
	if line == "" || strings.HasPrefix(line, commentChar) {
		return data.Record{}, true, nil
	}

	tokens := strings.Fields(line)
	switch len(tokens) {
	case 3, 6:
		// bare coordinates, prepend the default class so every layout is handled alike
		tokens = append([]string{fmt.Sprint(int(classification.Unclassified))}, tokens...)
	case 4, 7:
	default:
		return data.Record{}, false, errors.Errorf("unexpected number of tokens %d", len(tokens))
	}

	class, err := parseClass(tokens[0])
	if err != nil {
		return data.Record{}, false, err
	}

	var values [6]float64
	for i, token := range tokens[1:] {
		if values[i], err = parseFinite(token); err != nil {
			return data.Record{}, false, err
		}
	}

	if len(tokens) == 4 {
		return data.NewRecord(class, values[0], values[1], values[2]), false, nil
	}
	c := data.RGB(values[3]/255, values[4]/255, values[5]/255).Clamp()
	return data.NewColoredRecord(class, values[0], values[1], values[2], c), false, nil
}

func parseFinite(token string) (float64, error) {
	d, err := decimal.NewFromString(token)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", token)
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errors.Errorf("number out of range %q", token)
	}
	return f, nil
}

func parseClass(token string) (int, error) {
	d, err := decimal.NewFromString(token)
	if err != nil || !d.IsInteger() {
		return 0, errors.Errorf("invalid classification %q", token)
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || d.LessThan(decimal.NewFromInt(math.MinInt32)) {
		// far outside the registry, falls back to unclassified downstream
		return -1, nil
	}
	return int(d.IntPart()), nil
}
