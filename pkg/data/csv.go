package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/andeanstats/gdprev/pkg/model"
)

// CSVProvider implements ReleaseProvider and BenchmarkProvider for
// long-format CSV files with columns (period, horizon, value) and
// (period, horizon, flag) respectively.
type CSVProvider struct {
	releasePath   string
	benchmarkPath string

	releases []model.Release
	flags    []model.BenchmarkFlag
	loaded   bool
}

// NewCSVProvider creates a CSV-based provider. benchmarkPath may be empty
// if no indicator panel is available.
func NewCSVProvider(releasePath, benchmarkPath string) *CSVProvider {
	return &CSVProvider{
		releasePath:   releasePath,
		benchmarkPath: benchmarkPath,
	}
}

// loadIfNeeded loads both CSV files if not already loaded.
func (p *CSVProvider) loadIfNeeded() error {
	if p.loaded {
		return nil
	}

	releases, err := readReleaseCSV(p.releasePath)
	if err != nil {
		return err
	}
	p.releases = releases

	if p.benchmarkPath != "" {
		flags, err := readBenchmarkCSV(p.benchmarkPath)
		if err != nil {
			return err
		}
		p.flags = flags
	}

	p.loaded = true
	return nil
}

// FetchReleases returns release rows with period in [start, end], ordered
// by period then horizon.
func (p *CSVProvider) FetchReleases(ctx context.Context, start, end model.Period) ([]model.Release, error) {
	if err := p.loadIfNeeded(); err != nil {
		return nil, err
	}

	var out []model.Release
	for _, r := range p.releases {
		if r.Period < start || r.Period > end {
			continue
		}
		out = append(out, r)
	}
	sortReleases(out)
	return out, nil
}

// FetchBenchmarkFlags returns indicator rows with period in [start, end],
// ordered by period then horizon.
func (p *CSVProvider) FetchBenchmarkFlags(ctx context.Context, start, end model.Period) ([]model.BenchmarkFlag, error) {
	if err := p.loadIfNeeded(); err != nil {
		return nil, err
	}

	var out []model.BenchmarkFlag
	for _, f := range p.flags {
		if f.Period < start || f.Period > end {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Horizon < out[j].Horizon
	})
	return out, nil
}

func sortReleases(releases []model.Release) {
	sort.Slice(releases, func(i, j int) bool {
		if releases[i].Period != releases[j].Period {
			return releases[i].Period < releases[j].Period
		}
		return releases[i].Horizon < releases[j].Horizon
	})
}

func readReleaseCSV(path string) ([]model.Release, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open release CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read release CSV header: %w", err)
	}
	cols, err := columnIndices(header, "period", "horizon", "value")
	if err != nil {
		return nil, fmt.Errorf("release CSV %s: %w", path, err)
	}

	var releases []model.Release
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read release CSV record: %w", err)
		}
		line++

		period, err := model.ParsePeriod(record[cols[0]])
		if err != nil {
			return nil, fmt.Errorf("release CSV line %d: %w", line, err)
		}
		horizon, err := strconv.Atoi(strings.TrimSpace(record[cols[1]]))
		if err != nil {
			return nil, fmt.Errorf("release CSV line %d: invalid horizon: %w", line, err)
		}

		// An empty value cell is a missing release, not an error.
		raw := strings.TrimSpace(record[cols[2]])
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("release CSV line %d: invalid value: %w", line, err)
		}

		releases = append(releases, model.Release{
			Period:  period,
			Horizon: horizon,
			Value:   value,
		})
	}

	return releases, nil
}

func readBenchmarkCSV(path string) ([]model.BenchmarkFlag, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open benchmark CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark CSV header: %w", err)
	}
	cols, err := columnIndices(header, "period", "horizon", "flag")
	if err != nil {
		return nil, fmt.Errorf("benchmark CSV %s: %w", path, err)
	}

	var flags []model.BenchmarkFlag
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read benchmark CSV record: %w", err)
		}
		line++

		period, err := model.ParsePeriod(record[cols[0]])
		if err != nil {
			return nil, fmt.Errorf("benchmark CSV line %d: %w", line, err)
		}
		horizon, err := strconv.Atoi(strings.TrimSpace(record[cols[1]]))
		if err != nil {
			return nil, fmt.Errorf("benchmark CSV line %d: invalid horizon: %w", line, err)
		}
		flag, err := parseFlag(record[cols[2]])
		if err != nil {
			return nil, fmt.Errorf("benchmark CSV line %d: %w", line, err)
		}

		flags = append(flags, model.BenchmarkFlag{
			Period:  period,
			Horizon: horizon,
			Flag:    flag,
		})
	}

	return flags, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	}
	return false, fmt.Errorf("invalid flag %q: want 0/1", s)
}

// columnIndices maps required column names to their positions in the header.
func columnIndices(header []string, names ...string) ([]int, error) {
	byName := make(map[string]int, len(header))
	for i, col := range header {
		byName[strings.ToLower(strings.TrimSpace(col))] = i
	}

	out := make([]int, len(names))
	for i, name := range names {
		idx, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		out[i] = idx
	}
	return out, nil
}
