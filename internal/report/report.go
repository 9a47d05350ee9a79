// Package report renders a recorded possibility stream as an HTML line chart,
// one series per model. It is a debugging aid for inspecting classifier
// output without replaying the stream.
package report

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ReadPossibilities parses a classification result file: one line of
// space-separated possibilities per warm window. Every line must carry the
// same number of values.
func ReadPossibilities(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out [][]float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(out) > 0 && len(fields) != len(out[0]) {
			return nil, fmt.Errorf("%s line %d: %d values, want %d", path, len(out)+1, len(fields), len(out[0]))
		}
		row := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: bad value %q: %w", path, len(out)+1, s, err)
			}
			row[i] = v
		}
		out = append(out, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no possibility vectors", path)
	}
	return out, nil
}

// WriteChart renders the possibility stream of resultFile as an HTML line
// chart at htmlPath. Model names label the series; when absent or too few,
// series fall back to their index.
func WriteChart(resultFile, htmlPath string, names []string) error {
	stream, err := ReadPossibilities(resultFile)
	if err != nil {
		return err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Model possibilities",
			Subtitle: resultFile,
		}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	samples := make([]string, len(stream))
	for i := range stream {
		samples[i] = strconv.Itoa(i)
	}
	line.SetXAxis(samples)

	for m := 0; m < len(stream[0]); m++ {
		data := make([]opts.LineData, len(stream))
		for i, row := range stream {
			data[i] = opts.LineData{Value: row[m]}
		}
		name := fmt.Sprintf("model %d", m)
		if m < len(names) {
			name = names[m]
		}
		line.AddSeries(name, data)
	}

	out, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := line.Render(out); err != nil {
		return err
	}
	return out.Close()
}
