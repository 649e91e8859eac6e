// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/bureau-foundation/imagepipe/lib/assetid"
	"github.com/bureau-foundation/imagepipe/lib/backend"
	"github.com/bureau-foundation/imagepipe/lib/bundle"
	"github.com/bureau-foundation/imagepipe/lib/clock"
	"github.com/bureau-foundation/imagepipe/lib/imagecache"
	"github.com/bureau-foundation/imagepipe/lib/testutil"
)

const cacheDir = "node_modules/.cache/imagepipe"

type fixture struct {
	fs       billy.Filesystem
	backends *testutil.Backends
	reporter *collectingReporter
}

func newFixture() *fixture {
	return &fixture{
		fs:       testutil.MemFS(),
		backends: testutil.NewBackends(),
		reporter: &collectingReporter{},
	}
}

func (f *fixture) cache(t *testing.T) *imagecache.Cache {
	t.Helper()
	root, err := f.fs.Chroot(cacheDir)
	if err != nil {
		t.Fatalf("Chroot: %v", err)
	}
	return imagecache.Open(imagecache.Config{FS: root})
}

// orchestrator builds an orchestrator with a fresh cache handle, as a
// new build process would.
func (f *fixture) orchestrator(t *testing.T, rules []ConversionRule, modify ...func(*Options)) *Orchestrator {
	t.Helper()
	compiled, err := CompileRules(rules)
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	excludes, err := CompileExcludes(DefaultExcludes)
	if err != nil {
		t.Fatalf("CompileExcludes: %v", err)
	}
	options := Options{
		FS:             f.fs,
		Rules:          compiled,
		Backend:        backend.KindNative,
		Cache:          f.cache(t),
		Namespace:      "test",
		OutputDir:      "dist",
		PassthroughDir: "public",
		Excludes:       excludes,
		Clock:          clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		Reporter:       f.reporter,
	}
	for _, apply := range modify {
		apply(&options)
	}
	orchestrator, err := New(options, f.backends)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return orchestrator
}

type collectingReporter struct {
	mu      sync.Mutex
	records []AssetRecord
}

func (r *collectingReporter) Report(record AssetRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *collectingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func asset(name string, data []byte) *bundle.Artifact {
	return &bundle.Artifact{FileName: name, Type: bundle.TypeAsset, Source: data}
}

func chunk(name, code string) *bundle.Artifact {
	return &bundle.Artifact{FileName: name, Type: bundle.TypeChunk, Code: code}
}

// heroBuild returns a fresh host output referencing assets/hero.jpg.
func heroBuild(source []byte) *bundle.Set {
	set := bundle.NewSet()
	set.Put(asset("assets/hero.jpg", source))
	set.Put(chunk("assets/index-4f2a.js", `const hero = "/assets/hero.jpg";`))
	set.Put(asset("assets/index-9c1d.css", []byte(`.hero{background:url(/assets/hero.jpg)}`)))
	set.Put(asset("index.html", []byte(`<img src="/assets/hero.jpg">`)))
	return set
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	f := newFixture()
	_, err := New(Options{FS: f.fs, Backend: backend.Kind("gpu")}, f.backends)
	var configErr *backend.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
	if f.backends.Raster.Calls() != 0 {
		t.Error("no encoding may happen on a configuration error")
	}
}

func TestRunPostConvertsAndRewrites(t *testing.T) {
	f := newFixture()
	source := bytes.Repeat([]byte{0xab}, 1200)
	set := heroBuild(source)

	summary, err := f.orchestrator(t, []ConversionRule{{From: "jpg", To: "webp"}}).RunPost(context.Background(), set)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}

	newName := "assets/" + assetid.OutputName("dist/assets/hero.jpg", "webp")
	if _, ok := set.Get("assets/hero.jpg"); ok {
		t.Error("expected original hero.jpg removed from the build output")
	}
	output, ok := set.Get(newName)
	if !ok {
		t.Fatalf("expected %s in the set, have %v", newName, set.Names())
	}
	if !bytes.Equal(output.Source, testutil.Stamp(source, backend.FormatWebP)) {
		t.Error("output bytes are not the encoder's output")
	}

	for _, name := range []string{"assets/index-4f2a.js", "assets/index-9c1d.css", "index.html"} {
		artifact, _ := set.Get(name)
		if strings.Contains(artifact.Text(), "hero.jpg") {
			t.Errorf("%s still references hero.jpg: %s", name, artifact.Text())
		}
		if !strings.Contains(artifact.Text(), assetid.OutputName("dist/assets/hero.jpg", "webp")) {
			t.Errorf("%s does not reference the new name: %s", name, artifact.Text())
		}
	}

	if summary.Done != 1 || summary.Encoded != 1 || summary.OriginRemoved != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.Substitutions != 3 {
		t.Errorf("expected 3 substitutions, got %d", summary.Substitutions)
	}
	if got := f.backends.Raster.Closes(); got != 1 {
		t.Errorf("expected the raster backend closed once, got %d", got)
	}
	if f.reporter.count() != 1 {
		t.Errorf("expected 1 reported asset, got %d", f.reporter.count())
	}
}

func TestRunPostIsIdempotentWithWarmCache(t *testing.T) {
	f := newFixture()
	rules := []ConversionRule{{From: "jpg", To: "webp"}}
	source := bytes.Repeat([]byte{0x11}, 900)

	first := heroBuild(source)
	if _, err := f.orchestrator(t, rules).RunPost(context.Background(), first); err != nil {
		t.Fatalf("first RunPost: %v", err)
	}
	if f.backends.Raster.Calls() != 1 {
		t.Fatalf("expected 1 encode on the cold run, got %d", f.backends.Raster.Calls())
	}

	second := heroBuild(source)
	summary, err := f.orchestrator(t, rules).RunPost(context.Background(), second)
	if err != nil {
		t.Fatalf("second RunPost: %v", err)
	}
	if f.backends.Raster.Calls() != 1 {
		t.Errorf("expected zero encodes on the warm run, total is %d", f.backends.Raster.Calls())
	}
	if summary.CacheHits != 1 {
		t.Errorf("expected 1 cache hit, got %d", summary.CacheHits)
	}

	for _, name := range first.Names() {
		a, _ := first.Get(name)
		b, ok := second.Get(name)
		if !ok {
			t.Errorf("second run is missing %s", name)
			continue
		}
		if a.Text() != b.Text() {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestRunPostSizeChangeInvalidatesCache(t *testing.T) {
	f := newFixture()
	rules := []ConversionRule{{From: "jpg", To: "webp"}}

	if _, err := f.orchestrator(t, rules).RunPost(context.Background(), heroBuild(bytes.Repeat([]byte{1}, 500))); err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	summary, err := f.orchestrator(t, rules).RunPost(context.Background(), heroBuild(bytes.Repeat([]byte{1}, 501)))
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	if f.backends.Raster.Calls() != 2 {
		t.Errorf("expected a fresh encode after the size change, got %d calls", f.backends.Raster.Calls())
	}
	if summary.CacheHits != 0 {
		t.Errorf("expected no cache hit, got %d", summary.CacheHits)
	}
}

func TestRunPostSameFormatInPlace(t *testing.T) {
	f := newFixture()
	source := bytes.Repeat([]byte{7}, 400)
	set := bundle.NewSet()
	set.Put(asset("assets/logo.png", source))

	summary, err := f.orchestrator(t, nil).RunPost(context.Background(), set)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	artifact, ok := set.Get("assets/logo.png")
	if !ok {
		t.Fatal("same-format asset must stay under its name")
	}
	if !bytes.Equal(artifact.Source, testutil.Stamp(source, backend.FormatPNG)) {
		t.Error("expected the smaller encode in place")
	}
	if summary.OriginRemoved != 0 || set.Len() != 1 {
		t.Errorf("nothing should be removed or added, summary %+v names %v", summary, set.Names())
	}
}

// growingEncoder returns output larger than its input.
type growingEncoder struct{}

func (growingEncoder) Kind() backend.Kind { return backend.KindNative }
func (growingEncoder) Close() error       { return nil }
func (growingEncoder) Encode(_ context.Context, source []byte, _ backend.Format, _ backend.Settings) ([]byte, error) {
	return append(append([]byte(nil), source...), source...), nil
}

func TestRunPostKeepsOriginalWhenEncodeGrows(t *testing.T) {
	f := newFixture()
	f.backends.Raster = testutil.NewCountingEncoder(backend.KindNative, growingEncoder{})
	source := []byte("already tiny png")
	set := bundle.NewSet()
	set.Put(asset("assets/tiny.png", source))

	summary, err := f.orchestrator(t, nil).RunPost(context.Background(), set)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	artifact, _ := set.Get("assets/tiny.png")
	if !bytes.Equal(artifact.Source, source) {
		t.Error("expected the original bytes kept")
	}
	if summary.Kept != 1 || summary.Done != 1 {
		t.Errorf("expected one kept asset, got %+v", summary)
	}
	if summary.BytesAfter != summary.BytesBefore {
		t.Errorf("kept asset should not change totals: before %d after %d", summary.BytesBefore, summary.BytesAfter)
	}
}

func TestRunPostPassthroughConverted(t *testing.T) {
	f := newFixture()
	original := bytes.Repeat([]byte{3}, 300)
	testutil.WriteFile(t, f.fs, "public/icons/favicon.png", original)

	set := bundle.NewSet()
	set.Put(asset("icons/favicon.png", original))
	set.Put(asset("index.html", []byte(`<link rel="icon" href="/icons/favicon.png">`)))

	summary, err := f.orchestrator(t, []ConversionRule{{From: "png", To: "webp"}}).RunPost(context.Background(), set)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}

	if got := testutil.ReadFile(t, f.fs, "public/icons/favicon.png"); !bytes.Equal(got, original) {
		t.Error("passthrough source must never be modified")
	}
	if _, ok := set.Get("icons/favicon.png"); !ok {
		t.Error("the verbatim passthrough copy must be kept")
	}
	converted := "icons/" + assetid.OutputName("public/icons/favicon.png", "webp")
	if _, ok := set.Get(converted); !ok {
		t.Errorf("expected %s, have %v", converted, set.Names())
	}
	html, _ := set.Get("index.html")
	if !strings.Contains(html.Text(), assetid.OutputName("public/icons/favicon.png", "webp")) {
		t.Errorf("entry document not rewritten: %s", html.Text())
	}
	if summary.OriginRemoved != 0 {
		t.Errorf("passthrough assets are never removed, got %d", summary.OriginRemoved)
	}
	if summary.Done != 1 {
		t.Errorf("the verbatim copy must not be processed twice, got %d done", summary.Done)
	}
}

func TestRunPostPassthroughSameFormat(t *testing.T) {
	f := newFixture()
	original := bytes.Repeat([]byte{9}, 300)
	testutil.WriteFile(t, f.fs, "public/robots.png", original)
	set := bundle.NewSet()
	set.Put(asset("robots.png", original))

	if _, err := f.orchestrator(t, nil).RunPost(context.Background(), set); err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	if got := testutil.ReadFile(t, f.fs, "public/robots.png"); !bytes.Equal(got, original) {
		t.Error("passthrough source must never be modified")
	}
	artifact, _ := set.Get("robots.png")
	if !bytes.Equal(artifact.Source, testutil.Stamp(original, backend.FormatPNG)) {
		t.Error("expected the output-tree copy replaced by the encode")
	}
}

func TestRunPostQualifiesSharedBaseNames(t *testing.T) {
	f := newFixture()
	testutil.WriteFile(t, f.fs, "public/logo.png", bytes.Repeat([]byte{1}, 200))
	testutil.WriteFile(t, f.fs, "public/icons/logo.png", bytes.Repeat([]byte{2}, 200))
	set := bundle.NewSet()
	set.Put(asset("index.html", []byte(`<img src="/logo.png"><img src="/icons/logo.png">`)))

	if _, err := f.orchestrator(t, []ConversionRule{{From: "png", To: "webp"}}).RunPost(context.Background(), set); err != nil {
		t.Fatalf("RunPost: %v", err)
	}

	top := assetid.OutputName("public/logo.png", "webp")
	nested := "icons/" + assetid.OutputName("public/icons/logo.png", "webp")
	for _, name := range []string{top, nested} {
		if _, ok := set.Get(name); !ok {
			t.Errorf("expected %s, have %v", name, set.Names())
		}
	}
	html, _ := set.Get("index.html")
	want := `<img src="/` + top + `"><img src="/` + nested + `">`
	if html.Text() != want {
		t.Errorf("expected %s, got %s", want, html.Text())
	}
}

func TestRunPostIsolatesFailures(t *testing.T) {
	f := newFixture()
	f.backends.Raster.Fail = func(source []byte, _ backend.Format) error {
		if bytes.HasPrefix(source, []byte("bad")) {
			return &backend.EncodeError{Backend: backend.KindNative, Err: errors.New("malformed")}
		}
		return nil
	}
	bad := []byte("bad jpeg bytes")
	set := bundle.NewSet()
	set.Put(asset("assets/broken.jpg", bad))
	set.Put(asset("assets/fine.jpg", bytes.Repeat([]byte{5}, 200)))
	set.Put(chunk("assets/app.js", `["broken.jpg","fine.jpg"]`))

	summary, err := f.orchestrator(t, []ConversionRule{{From: "jpg", To: "webp"}}).RunPost(context.Background(), set)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	if summary.Failed != 1 || summary.Done != 1 {
		t.Fatalf("expected one failure and one success, got %+v", summary)
	}

	failure := summary.Failures()[0]
	var encodeErr *backend.EncodeError
	if !errors.As(failure.Err, &encodeErr) {
		t.Errorf("expected *EncodeError on the failed record, got %v", failure.Err)
	}
	broken, ok := set.Get("assets/broken.jpg")
	if !ok || !bytes.Equal(broken.Source, bad) {
		t.Error("a failed asset must be left exactly as the host produced it")
	}
	app, _ := set.Get("assets/app.js")
	if !strings.Contains(app.Code, `"broken.jpg"`) {
		t.Errorf("references to a failed asset must not be rewritten: %s", app.Code)
	}
	if strings.Contains(app.Code, `"fine.jpg"`) {
		t.Errorf("references to the converted asset must be rewritten: %s", app.Code)
	}
}

func TestRunPostRoutesSVGToVector(t *testing.T) {
	f := newFixture()
	set := bundle.NewSet()
	set.Put(asset("assets/icon.svg", []byte(testutil.SVG)))

	summary, err := f.orchestrator(t, []ConversionRule{{From: "png", To: "webp"}}).RunPost(context.Background(), set)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	if f.backends.Svg.Calls() != 1 {
		t.Errorf("expected one vector encode, got %d", f.backends.Svg.Calls())
	}
	if len(f.backends.Acquired()) != 0 {
		t.Errorf("no raster backend should be acquired for svg-only builds, got %v", f.backends.Acquired())
	}
	if summary.Done != 1 {
		t.Errorf("expected svg done, got %+v", summary)
	}
	if _, ok := set.Get("assets/icon.svg"); !ok {
		t.Error("svg keeps its name")
	}
}

func TestRunPostRewritesEntryOutsideSet(t *testing.T) {
	f := newFixture()
	testutil.WriteFile(t, f.fs, "dist/index.html", []byte(`<img src="/assets/hero.jpg">`))
	set := bundle.NewSet()
	set.Put(asset("assets/hero.jpg", bytes.Repeat([]byte{2}, 100)))

	summary, err := f.orchestrator(t, []ConversionRule{{From: "jpg", To: "webp"}}).RunPost(context.Background(), set)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	html := string(testutil.ReadFile(t, f.fs, "dist/index.html"))
	if strings.Contains(html, "hero.jpg") {
		t.Errorf("entry document not rewritten: %s", html)
	}
	if summary.Substitutions != 1 {
		t.Errorf("expected 1 substitution, got %d", summary.Substitutions)
	}
}

func TestRunPostSkipsExcludedAndNonImages(t *testing.T) {
	f := newFixture()
	testutil.WriteFile(t, f.fs, "public/robots.txt", []byte("User-agent: *"))
	set := bundle.NewSet()
	set.Put(asset("assets/data.json", []byte("{}")))
	set.Put(asset("node_modules/pkg/logo.png", []byte("png")))
	set.Put(asset("robots.txt", []byte("User-agent: *")))

	summary, err := f.orchestrator(t, nil).RunPost(context.Background(), set)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	if f.backends.Raster.Calls() != 0 || len(f.backends.Acquired()) != 0 {
		t.Errorf("expected no encoding and no backend, got %d calls", f.backends.Raster.Calls())
	}
	if summary.Skipped != 2 || summary.Done != 0 {
		t.Fatalf("expected the excluded image and the passthrough text file skipped, got %+v", summary)
	}
	var skipped []string
	for _, record := range summary.Records {
		if record.State != StateSkipped {
			t.Errorf("%s: expected skipped, got %s", record.SourcePath, record.State)
		}
		skipped = append(skipped, record.SourcePath)
	}
	want := []string{"dist/node_modules/pkg/logo.png", "public/robots.txt"}
	if strings.Join(skipped, ",") != strings.Join(want, ",") {
		t.Errorf("expected skipped %v, got %v", want, skipped)
	}
	if f.reporter.count() != 2 {
		t.Errorf("expected every skipped record reported, got %d", f.reporter.count())
	}
	if _, ok := set.Get("node_modules/pkg/logo.png"); !ok {
		t.Error("a skipped asset must stay in the output")
	}
}

func TestRunPostNativeHeroScenario(t *testing.T) {
	f := newFixture()
	f.backends.Raster = testutil.NewCountingEncoder(backend.KindNative, backend.Native{})
	profile, err := backend.ResolveProfile(map[string]backend.Settings{"webp": {Quality: 10}})
	if err != nil {
		t.Fatalf("ResolveProfile: %v", err)
	}
	withProfile := func(options *Options) { options.Profile = profile }
	rules := []ConversionRule{{From: "jpg", To: "webp"}}
	source := testutil.NoisyJPEG(t, 200, 200, 95, 1)

	first := heroBuild(source)
	summary, err := f.orchestrator(t, rules, withProfile).RunPost(context.Background(), first)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	if summary.Done != 1 {
		t.Fatalf("expected hero converted, got %+v (failures %v)", summary, summary.Failures())
	}
	newName := "assets/" + assetid.OutputName("dist/assets/hero.jpg", "webp")
	output, ok := first.Get(newName)
	if !ok {
		t.Fatalf("expected %s, have %v", newName, first.Names())
	}
	if len(output.Source) >= len(source) {
		t.Errorf("expected webp smaller than %d bytes, got %d", len(source), len(output.Source))
	}
	if _, ok := first.Get("assets/hero.jpg"); ok {
		t.Error("hero.jpg must be removed from the build output")
	}

	entries := f.cache(t).Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one manifest entry, got %d", len(entries))
	}
	if entries[0].Size != int64(len(source)) || entries[0].Encoded != len(output.Source) {
		t.Errorf("unexpected manifest entry %+v", entries[0])
	}

	second := heroBuild(source)
	summary, err = f.orchestrator(t, rules, withProfile).RunPost(context.Background(), second)
	if err != nil {
		t.Fatalf("second RunPost: %v", err)
	}
	if f.backends.Raster.Calls() != 1 {
		t.Errorf("expected zero encodes on the second run, total %d", f.backends.Raster.Calls())
	}
	if !summary.Records[0].CacheHit {
		t.Error("expected the second run to report a cache hit")
	}
	again, _ := second.Get(newName)
	if !bytes.Equal(again.Source, output.Source) {
		t.Error("second run output differs from the first")
	}
}

// gateEncoder blocks every Encode until release is closed, announcing
// each call on started.
type gateEncoder struct {
	started chan string
	release chan struct{}
}

func (g *gateEncoder) Kind() backend.Kind { return backend.KindNative }
func (g *gateEncoder) Close() error       { return nil }
func (g *gateEncoder) Encode(ctx context.Context, source []byte, _ backend.Format, _ backend.Settings) ([]byte, error) {
	g.started <- string(source)
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return source[:len(source)/2], nil
}

func TestRunPostEncodesAssetsConcurrently(t *testing.T) {
	f := newFixture()
	gate := &gateEncoder{started: make(chan string, 2), release: make(chan struct{})}
	f.backends.Raster = testutil.NewCountingEncoder(backend.KindNative, gate)

	set := bundle.NewSet()
	set.Put(asset("assets/a.png", []byte("first png source")))
	set.Put(asset("assets/b.png", []byte("second png source")))
	orchestrator := f.orchestrator(t, nil)

	done := make(chan Summary, 1)
	go func() {
		summary, _ := orchestrator.RunPost(context.Background(), set)
		done <- summary
	}()

	// Both encodes must be in flight before either is allowed to finish.
	testutil.RequireReceive(t, gate.started, 5*time.Second, "first encode started")
	testutil.RequireReceive(t, gate.started, 5*time.Second, "second encode started")
	close(gate.release)

	summary := testutil.RequireReceive(t, done, 5*time.Second, "RunPost returned")
	if summary.Done != 2 {
		t.Errorf("expected both assets done, got %+v", summary)
	}
	if f.backends.Raster.Closes() != 1 {
		t.Errorf("expected one Close after the barrier, got %d", f.backends.Raster.Closes())
	}
}

func TestRunPostWithPoolBackendSharesFilesystem(t *testing.T) {
	f := newFixture()
	registry := backend.NewRegistry(backend.Capabilities{Native: true, Pool: true, Vector: true, Cores: 4}, nil)
	compiled, err := CompileRules([]ConversionRule{{From: "png", To: "webp"}})
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}

	const assets = 8
	set := bundle.NewSet()
	var names []string
	for i := range assets {
		name := fmt.Sprintf("assets/tile-%d.png", i)
		names = append(names, name)
		set.Put(asset(name, testutil.NoisyPNG(t, 48, 48, uint64(i+1))))
	}
	// Half the sources come from the passthrough directory, so reads of
	// the project tree overlap the cache's blob writes.
	for i := range assets / 2 {
		testutil.WriteFile(t, f.fs, fmt.Sprintf("public/badges/badge-%d.png", i), testutil.NoisyPNG(t, 32, 32, uint64(100+i)))
	}

	orchestrator, err := New(Options{
		FS:             f.fs,
		Rules:          compiled,
		Backend:        backend.KindPool,
		Cache:          f.cache(t),
		Namespace:      "test",
		OutputDir:      "dist",
		PassthroughDir: "public",
	}, registry)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	summary, err := orchestrator.RunPost(context.Background(), set)
	if err != nil {
		t.Fatalf("RunPost: %v", err)
	}
	if summary.Done != assets+assets/2 || summary.Failed != 0 {
		t.Fatalf("expected every asset done, got %+v (failures %v)", summary, summary.Failures())
	}
	for _, name := range names {
		converted := "assets/" + assetid.OutputName("dist/"+name, "webp")
		if _, ok := set.Get(converted); !ok {
			t.Errorf("expected %s in the output", converted)
		}
	}
	if entries := f.cache(t).Entries(); len(entries) != assets+assets/2 {
		t.Errorf("expected %d manifest entries, got %d", assets+assets/2, len(entries))
	}
}
