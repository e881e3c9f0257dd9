package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
	"github.com/MrSnakeDoc/flintmeta/internal/httpclient"
	"github.com/MrSnakeDoc/flintmeta/internal/index"
	"github.com/MrSnakeDoc/flintmeta/internal/logger"
	"github.com/MrSnakeDoc/flintmeta/internal/metrics"
	"github.com/MrSnakeDoc/flintmeta/internal/sources/launchermeta"
	"github.com/MrSnakeDoc/flintmeta/internal/sources/maven"
)

var testCoords = Coordinates{
	Loader:       maven.Coordinate{Group: "net.flintloader", Artifact: "punch"},
	Installer:    maven.Coordinate{Group: "net.flintloader", Artifact: "installer"},
	Mappings:     maven.Coordinate{Group: "net.fabricmc", Artifact: "yarn"},
	Intermediary: maven.Coordinate{Group: "net.fabricmc", Artifact: "intermediary"},
}

// fakeRemote serves maven metadata and the vendor manifest from one server.
type fakeRemote struct {
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	srv    *httptest.Server
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{bodies: map[string]string{}, status: map[string]int{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		body, ok := f.bodies[r.URL.Path]
		status := f.status[r.URL.Path]
		f.mu.Unlock()

		switch {
		case status != 0:
			w.WriteHeader(status)
		case !ok:
			http.NotFound(w, r)
		default:
			_, _ = w.Write([]byte(body))
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRemote) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[path] = body
}

func (f *fakeRemote) fail(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[path] = status
}

func metadataXML(versions ...string) string {
	var b strings.Builder
	b.WriteString("<metadata><versioning><versions>")
	for _, v := range versions {
		fmt.Fprintf(&b, "<version>%s</version>", v)
	}
	b.WriteString("</versions></versioning></metadata>")
	return b.String()
}

const vendorJSON = `{"latest":{"release":"1.20.1","snapshot":"23w31a"},"versions":[
 {"id":"23w31a","type":"snapshot"},
 {"id":"1.20.1","type":"release"},
 {"id":"1.20","type":"release"},
 {"id":"1.19.4","type":"release"}]}`

func seedRemote(f *fakeRemote) {
	f.set("/releases/net/flintloader/punch/maven-metadata.xml", metadataXML("1.0.0", "2.0.0"))
	f.set("/releases/net/flintloader/installer/maven-metadata.xml", metadataXML("0.1.0"))
	f.set("/mirror/net/fabricmc/yarn/maven-metadata.xml", metadataXML("1.20+build.1", "1.20.1+build.1", "1.20.1+build.2"))
	f.set("/mirror/net/fabricmc/intermediary/maven-metadata.xml", metadataXML("1.19.4", "1.20", "1.20.1", "unknown"))
	f.set("/mc/game/version_manifest.json", vendorJSON)
}

type recordingMirror struct {
	mu    sync.Mutex
	saved []uint64
	err   error
}

func (m *recordingMirror) SaveSnapshot(_ context.Context, _ *domain.Snapshot, _ time.Time, gen uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, gen)
	return m.err
}

func newTestCatalog(t *testing.T, f *fakeRemote, opts ...Option) *Catalog {
	t.Helper()
	client := httpclient.NewDefaultClient(time.Second, 1)
	log := logger.NewNop()

	primary := maven.NewRepository(f.srv.URL+"/releases/", client, log)
	mirror := maven.NewRepository(f.srv.URL+"/mirror", client, log)
	vendor := launchermeta.NewClient(f.srv.URL+"/mc/game/version_manifest.json", client)

	return New(primary, mirror, vendor, testCoords, index.NewMemoryIndex(), log, opts...)
}

func TestRebuildPublishesSnapshot(t *testing.T) {
	f := newFakeRemote(t)
	seedRemote(f)
	c := newTestCatalog(t, f)

	require.False(t, c.Ready())
	require.NoError(t, c.Rebuild(context.Background()))
	require.True(t, c.Ready())

	s := c.All()

	assert.Equal(t, []domain.LoaderVersion{
		{Version: "2.0.0", Maven: "net.flintloader:punch:2.0.0", URL: f.srv.URL + "/releases/net/flintloader/punch/2.0.0/punch-2.0.0.jar"},
		{Version: "1.0.0", Maven: "net.flintloader:punch:1.0.0", URL: f.srv.URL + "/releases/net/flintloader/punch/1.0.0/punch-1.0.0.jar"},
	}, s.Loaders)

	assert.Equal(t, []domain.GameVersion{
		{Version: "1.20.1", Stable: true},
		{Version: "1.20", Stable: true},
		{Version: "1.19.4", Stable: true},
	}, s.Game)

	assert.Equal(t, []string{"1.20.1", "1.20", "1.19.4"},
		versionsOf(s.Intermediary, func(i domain.IntermediaryVersion) string { return i.Version }))
	for _, i := range s.Intermediary {
		assert.True(t, i.Stable)
	}

	require.Len(t, s.Mappings, 3)
	assert.Equal(t, domain.MappingVersion{
		GameVersion: "1.20.1",
		Maven:       "net.fabricmc:yarn:1.20.1+build.2",
		Version:     "1.20.1+build.2",
		Separator:   "+build.",
		Build:       2,
	}, s.Mappings[0])

	assert.Equal(t, []domain.InstallerVersion{{
		URL:     f.srv.URL + "/releases/net/flintloader/installer/0.1.0/installer-0.1.0.jar",
		Maven:   "net.flintloader:installer:0.1.0",
		Version: "0.1.0",
		Stable:  true,
	}}, s.Installers)
}

func TestRebuildIsIdempotent(t *testing.T) {
	f := newFakeRemote(t)
	seedRemote(f)
	c := newTestCatalog(t, f)

	require.NoError(t, c.Rebuild(context.Background()))
	first := c.All()
	require.NoError(t, c.Rebuild(context.Background()))
	second := c.All()

	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
}

func TestRebuildVendorFailureKeepsSnapshot(t *testing.T) {
	f := newFakeRemote(t)
	seedRemote(f)
	m := metrics.New()
	c := newTestCatalog(t, f, WithMetrics(m))

	require.NoError(t, c.Rebuild(context.Background()))
	before := c.All()

	f.set("/releases/net/flintloader/punch/maven-metadata.xml", metadataXML("1.0.0", "2.0.0", "3.0.0"))
	f.fail("/mc/game/version_manifest.json", http.StatusNotFound)

	err := c.Rebuild(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), SourceVendor)

	assert.Same(t, before, c.All(), "a failed cycle must not publish")
	assert.Len(t, c.Loaders(), 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFetchFailures.WithLabelValues(SourceVendor)))
}

func TestRebuildDegradesMavenFailures(t *testing.T) {
	f := newFakeRemote(t)
	seedRemote(f)
	f.fail("/mirror/net/fabricmc/yarn/maven-metadata.xml", http.StatusNotFound)
	f.set("/mirror/net/fabricmc/intermediary/maven-metadata.xml", "<metadata><version>")

	c := newTestCatalog(t, f)
	require.NoError(t, c.Rebuild(context.Background()))

	s := c.All()
	assert.NotNil(t, s.Mappings)
	assert.Empty(t, s.Mappings)
	assert.Empty(t, s.Intermediary)
	// empty intermediary falls back to the full vendor list
	assert.Equal(t, []domain.GameVersion{
		{Version: "23w31a", Stable: false},
		{Version: "1.20.1", Stable: true},
		{Version: "1.20", Stable: true},
		{Version: "1.19.4", Stable: true},
	}, s.Game)
	assert.Len(t, s.Loaders, 2)
}

func TestRebuildMirrors(t *testing.T) {
	f := newFakeRemote(t)
	seedRemote(f)

	mirror := &recordingMirror{err: errors.New("redis down")}
	m := metrics.New()
	c := newTestCatalog(t, f, WithMirror(mirror), WithMetrics(m))

	require.NoError(t, c.Rebuild(context.Background()), "mirror failures never fail the cycle")
	require.NoError(t, c.Rebuild(context.Background()))

	assert.Equal(t, []uint64{1, 2}, mirror.saved)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CatalogEntries.WithLabelValues("game")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CatalogEntries.WithLabelValues("loaders")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CatalogEntries.WithLabelValues(CollectionSupported)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CatalogEntries.WithLabelValues(CollectionVendorReleases)))
}

func TestRebuildCoverage(t *testing.T) {
	f := newFakeRemote(t)
	seedRemote(f)
	c := newTestCatalog(t, f)

	_, ok := c.Coverage()
	assert.False(t, ok, "no coverage before the first publish")

	require.NoError(t, c.Rebuild(context.Background()))
	cov, ok := c.Coverage()
	require.True(t, ok)
	assert.Equal(t, Coverage{VendorReleases: 4, Supported: 3, LatestSupported: "1.20.1"}, cov)

	// a failed cycle keeps the coverage of the published snapshot
	f.fail("/mc/game/version_manifest.json", http.StatusInternalServerError)
	require.Error(t, c.Rebuild(context.Background()))
	cov, ok = c.Coverage()
	require.True(t, ok)
	assert.Equal(t, 3, cov.Supported)
}

func TestCoordinatesSource(t *testing.T) {
	assert.Equal(t, SourceLoader, testCoords.Source(testCoords.Loader))
	assert.Equal(t, SourceMappings, testCoords.Source(testCoords.Mappings))
	assert.Equal(t, SourceIntermediary, testCoords.Source(testCoords.Intermediary))
	assert.Equal(t, SourceInstaller, testCoords.Source(testCoords.Installer))
	assert.Equal(t, "", testCoords.Source(maven.Coordinate{Group: "x", Artifact: "y"}))
}
