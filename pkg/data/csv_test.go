package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andeanstats/gdprev/pkg/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFetchReleases(t *testing.T) {
	path := writeFile(t, "releases.csv", `period,horizon,value
2010-02,1,2.5
2010-01,1,1.5
2010-01,2,1.7
2010-03,1,
2011-01,1,4.0
`)

	p := NewCSVProvider(path, "")
	releases, err := p.FetchReleases(context.Background(), model.NewPeriod(2010, 1), model.NewPeriod(2010, 12))
	if err != nil {
		t.Fatal(err)
	}

	// The empty value cell is a missing release, and the 2011 row falls
	// outside the range.
	if len(releases) != 3 {
		t.Fatalf("got %d releases, want 3", len(releases))
	}

	// Ordered by period then horizon.
	if releases[0].Period != model.NewPeriod(2010, 1) || releases[0].Horizon != 1 {
		t.Errorf("first release = %+v", releases[0])
	}
	if releases[1].Horizon != 2 {
		t.Errorf("second release = %+v", releases[1])
	}
	if releases[2].Value != 2.5 {
		t.Errorf("third release = %+v", releases[2])
	}
}

func TestFetchReleasesHeaderOrder(t *testing.T) {
	// Columns located by name, not position.
	path := writeFile(t, "releases.csv", `value,period,horizon
3.2,2012-06,1
`)

	p := NewCSVProvider(path, "")
	releases, err := p.FetchReleases(context.Background(), model.NewPeriod(2012, 1), model.NewPeriod(2012, 12))
	if err != nil {
		t.Fatal(err)
	}
	if len(releases) != 1 || releases[0].Value != 3.2 {
		t.Errorf("releases = %+v", releases)
	}
}

func TestFetchReleasesMissingColumn(t *testing.T) {
	path := writeFile(t, "releases.csv", `period,value
2012-06,3.2
`)

	p := NewCSVProvider(path, "")
	if _, err := p.FetchReleases(context.Background(), model.NewPeriod(2012, 1), model.NewPeriod(2012, 12)); err == nil {
		t.Error("expected error for missing horizon column")
	}
}

func TestFetchReleasesBadPeriod(t *testing.T) {
	path := writeFile(t, "releases.csv", `period,horizon,value
2012-13,1,3.2
`)

	p := NewCSVProvider(path, "")
	if _, err := p.FetchReleases(context.Background(), model.NewPeriod(2012, 1), model.NewPeriod(2012, 12)); err == nil {
		t.Error("expected error for invalid period")
	}
}

func TestFetchBenchmarkFlags(t *testing.T) {
	releases := writeFile(t, "releases.csv", `period,horizon,value
2010-01,1,1.5
`)
	benchmarks := writeFile(t, "benchmarks.csv", `period,horizon,flag
2010-01,1,1
2010-01,2,0
2010-02,1,true
`)

	p := NewCSVProvider(releases, benchmarks)
	flags, err := p.FetchBenchmarkFlags(context.Background(), model.NewPeriod(2010, 1), model.NewPeriod(2010, 12))
	if err != nil {
		t.Fatal(err)
	}
	if len(flags) != 3 {
		t.Fatalf("got %d flags, want 3", len(flags))
	}
	if !flags[0].Flag || flags[1].Flag || !flags[2].Flag {
		t.Errorf("flags = %+v", flags)
	}
}

func TestFetchBenchmarkFlagsInvalid(t *testing.T) {
	releases := writeFile(t, "releases.csv", `period,horizon,value
2010-01,1,1.5
`)
	benchmarks := writeFile(t, "benchmarks.csv", `period,horizon,flag
2010-01,1,maybe
`)

	p := NewCSVProvider(releases, benchmarks)
	if _, err := p.FetchBenchmarkFlags(context.Background(), model.NewPeriod(2010, 1), model.NewPeriod(2010, 12)); err == nil {
		t.Error("expected error for invalid flag")
	}
}
