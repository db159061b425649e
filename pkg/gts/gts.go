// Package gts computes the month-weighted cumulative temperature sum (Grünlandtemperatursumme)
// of a dated series and renders it as a jest fixture.
package gts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/beelot/tooling/pkg/apperr"
	"github.com/natefinch/atomic"
)

const dateLayout = "2006-01-02"

var (
	datesRE  = regexp.MustCompile(`(?s)const dates = \[(.*?)\];`)
	valuesRE = regexp.MustCompile(`(?s)const values = \[(.*?)\];`)
)

// Result is the cumulative sum up to and including Date, rounded to 2 decimals.
type Result struct {
	Date string
	GTS  float64
}

// ParseArrays extracts the dates and values array literals from a JavaScript source.
// Dates may use single quotes.
func ParseArrays(src string) ([]string, []float64, error) {
	datesMatch := datesRE.FindStringSubmatch(src)
	valuesMatch := valuesRE.FindStringSubmatch(src)
	if datesMatch == nil || valuesMatch == nil {
		return nil, nil, apperr.InputFormat("input file must contain valid 'dates' and 'values' arrays")
	}

	var dates []string
	body := strings.ReplaceAll(strings.TrimSpace(datesMatch[1]), "'", `"`)
	if err := json.Unmarshal([]byte("["+body+"]"), &dates); err != nil {
		return nil, nil, apperr.InputFormat("invalid dates array: %v", err)
	}

	var values []float64
	if err := json.Unmarshal([]byte("["+strings.TrimSpace(valuesMatch[1])+"]"), &values); err != nil {
		return nil, nil, apperr.InputFormat("invalid values array: %v", err)
	}
	return dates, values, nil
}

// Weight returns the factor applied to a value measured in month.
func Weight(month time.Month) float64 {
	switch month {
	case time.January:
		return 0.5
	case time.February:
		return 0.75
	default:
		return 1.0
	}
}

func weightOf(date string) (float64, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, apperr.InputFormat("invalid date %q: expected YYYY-MM-DD", date)
	}
	return Weight(t.Month()), nil
}

// Calculate clamps negative values to zero, weights them by month and accumulates them.
// The running sum is kept unrounded; each result is rounded to 2 decimals.
func Calculate(dates []string, values []float64) ([]Result, error) {
	if len(dates) != len(values) {
		return nil, apperr.InputFormat("the dates and values arrays must have the same length (%d != %d)",
			len(dates), len(values))
	}

	results := make([]Result, 0, len(dates))
	sum := 0.0
	for i, date := range dates {
		w, err := weightOf(date)
		if err != nil {
			return nil, err
		}
		sum += math.Max(0, values[i]) * w
		results = append(results, Result{Date: date, GTS: round2(sum)})
	}
	return results, nil
}

// round2 rounds the exact binary value of f to 2 decimals, ties to even.
func round2(f float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	return r
}

// WriteFixture renders results as an annotated expect(...).toEqual([...]) block.
func WriteFixture(w io.Writer, results []Result) error {
	var buf bytes.Buffer
	buf.WriteString("        expect(result).toEqual([\n")
	prev, prevText := 0.0, "0"
	for _, r := range results {
		weight, err := weightOf(r.Date)
		if err != nil {
			return err
		}
		delta := r.GTS - prev
		if delta > 0 {
			fmt.Fprintf(&buf, "            // %s + (%.1f * %s) = %s\n",
				prevText, delta/weight, formatFloat(weight), formatFloat(r.GTS))
		} else {
			fmt.Fprintf(&buf, "            // %s + (0 * %s) = %s\n",
				prevText, formatFloat(weight), formatFloat(r.GTS))
		}
		fmt.Fprintf(&buf, "            { date: '%s', gts: %s },\n", r.Date, formatFloat(r.GTS))
		prev, prevText = r.GTS, formatFloat(r.GTS)
	}
	buf.WriteString("        ]);\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// formatFloat prints the shortest representation with at least one decimal.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Run reads inputPath, computes the series and atomically writes the fixture to outputPath.
// Nothing is written when parsing or calculation fails.
func Run(inputPath, outputPath string) ([]Result, error) {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.InputFormat("input file does not exist: %s", inputPath)
		}
		return nil, fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	dates, values, err := ParseArrays(string(src))
	if err != nil {
		return nil, err
	}
	results, err := Calculate(dates, values)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteFixture(&buf, results); err != nil {
		return nil, err
	}
	if err := atomic.WriteFile(outputPath, &buf); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return results, nil
}
