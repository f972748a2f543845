package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wrldbldr/pkg/cache"
	"github.com/matzehuels/wrldbldr/pkg/config"
	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/gen"
	"github.com/matzehuels/wrldbldr/pkg/layout"
	"github.com/matzehuels/wrldbldr/pkg/world"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, quietLogger())
}

func TestExecute(t *testing.T) {
	r := newRunner(t, nil)
	res, err := r.Execute(context.Background(), config.Default(), Options{
		Formats: []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(res.Layout.Regions) != 1 {
		t.Fatalf("regions = %d, want 1", len(res.Layout.Regions))
	}
	if got := res.Layout.Regions[0].Count; got != world.DefaultTargetSize {
		t.Errorf("region count = %d, want %d", got, world.DefaultTargetSize)
	}
	if res.Stats.Sections < world.DefaultTargetSize {
		t.Errorf("sections = %d, want at least %d", res.Stats.Sections, world.DefaultTargetSize)
	}
	if res.Layout.Seed != gen.DefaultSeed {
		t.Errorf("seed = %d, want %d", res.Layout.Seed, gen.DefaultSeed)
	}
	if res.ProjectHash == "" || res.LayoutHash == "" {
		t.Error("hashes should be set")
	}

	l, err := layout.Unmarshal(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(l.Sections) != len(res.Layout.Sections) {
		t.Errorf("json artifact has %d sections", len(l.Sections))
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "graph G {") {
		t.Errorf("dot artifact = %.40q", res.Artifacts[FormatDOT])
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("null cache should never hit")
	}
}

func TestExecuteDefaultsToJSON(t *testing.T) {
	res, err := newRunner(t, nil).Execute(context.Background(), config.Default(), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Artifacts) != 1 || res.Artifacts[FormatJSON] == nil {
		t.Errorf("artifacts = %v", keys(res.Artifacts))
	}
}

func TestExecuteCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(t, c)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatJSON, FormatDOT}}

	first, err := r.Execute(ctx, config.Default(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second, err := r.Execute(ctx, config.Default(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("cache info = %+v, want both hits", second.CacheInfo)
	}
	if second.Layout.RunID != first.Layout.RunID {
		t.Error("cached layout should keep the original run ID")
	}
	if !bytes.Equal(first.Artifacts[FormatDOT], second.Artifacts[FormatDOT]) {
		t.Error("cached artifact differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, config.Default(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
	if third.Layout.RunID == first.Layout.RunID {
		t.Error("refresh should generate a new run")
	}

	seed := uint64(9)
	other, err := r.Execute(ctx, config.Default(), Options{Seed: &seed})
	if err != nil {
		t.Fatalf("Execute seed 9: %v", err)
	}
	if other.CacheInfo.LayoutHit {
		t.Error("different seed should miss the layout cache")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	ctx := context.Background()
	p := config.Default().WithSeed(1234)

	a, _, err := Generate(ctx, p, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := Generate(ctx, p, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Sections) != len(b.Sections) {
		t.Fatalf("section counts differ: %d vs %d", len(a.Sections), len(b.Sections))
	}
	for i := range a.Sections {
		sa, sb := a.Sections[i], b.Sections[i]
		if sa.X != sb.X || sa.Y != sb.Y || sa.Tile != sb.Tile || sa.Rotation != sb.Rotation {
			t.Fatalf("section %d differs: %+v vs %+v", i, sa, sb)
		}
	}
}

func TestExecuteInvalid(t *testing.T) {
	r := newRunner(t, nil)
	ctx := context.Background()

	_, err := r.Execute(ctx, config.Default(), Options{Formats: []string{"gif"}})
	if !wberrors.Is(err, wberrors.ErrCodeInvalidInput) {
		t.Errorf("bad format: %v", err)
	}

	p := config.Default()
	p.Blueprint = &config.RegionSpec{Target: -1}
	_, err = r.Execute(ctx, p, Options{})
	if !wberrors.Is(err, wberrors.ErrCodeInvalidBlueprint) {
		t.Errorf("bad blueprint: %v", err)
	}
}

type recordingSubstrate struct {
	mu      sync.Mutex
	visuals []string
}

func (s *recordingSubstrate) CreateVisual(_ context.Context, visual string, _ float64, _ world.Vec2, _ bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visuals = append(s.visuals, visual)
	return nil
}

func TestExecuteSubstrateAndObservers(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(t, c)
	ctx := context.Background()

	// Warm the cache; observers and substrates must still see a fresh run.
	if _, err := r.Execute(ctx, config.Default(), Options{}); err != nil {
		t.Fatal(err)
	}

	sub := &recordingSubstrate{}
	rec := gen.NewRecorder()
	res, err := r.Execute(ctx, config.Default(), Options{
		Substrate: sub,
		Observers: []gen.Observer{rec},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("substrate runs should not use the layout cache")
	}
	if len(sub.visuals) != len(res.Layout.Sections) {
		t.Errorf("substrate got %d visuals, want %d", len(sub.visuals), len(res.Layout.Sections))
	}
	kinds := rec.Kinds()
	if len(kinds) == 0 || kinds[0] != gen.EventRunStart || kinds[len(kinds)-1] != gen.EventRunFinish {
		t.Errorf("observer kinds = %v", kinds)
	}
}

func TestBatch(t *testing.T) {
	r := newRunner(t, nil)
	seeds := []uint64{1, 2, 3, 4, 5}
	results, err := r.Batch(context.Background(), config.Default(), seeds, 2, Options{})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if len(results) != len(seeds) {
		t.Fatalf("results = %d", len(results))
	}
	runs := make(map[string]bool)
	for i, res := range results {
		if res.Layout.Seed != seeds[i] {
			t.Errorf("result %d seed = %d, want %d", i, res.Layout.Seed, seeds[i])
		}
		runs[res.Layout.RunID] = true
	}
	if len(runs) != len(seeds) {
		t.Errorf("expected %d distinct runs, got %d", len(seeds), len(runs))
	}
}

func TestBatchError(t *testing.T) {
	r := newRunner(t, nil)
	_, err := r.Batch(context.Background(), config.Default(), []uint64{1, 2}, 0, Options{Formats: []string{"bmp"}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" SVG, dot,,json ")
	if err != nil {
		t.Fatalf("ParseFormats: %v", err)
	}
	want := []string{"svg", "dot", "json"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ParseFormats = %v, want %v", got, want)
	}
	if _, err := ParseFormats("svg,tiff"); err == nil {
		t.Error("expected error for tiff")
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
