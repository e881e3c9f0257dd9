// Package profile turns a loader and an intermediary into launcher documents:
// the loader-info pair and the launch profile built from the loader's
// published descriptor.
package profile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
	"github.com/MrSnakeDoc/flintmeta/internal/httpclient"
	"github.com/MrSnakeDoc/flintmeta/internal/logger"
	"github.com/MrSnakeDoc/flintmeta/internal/metrics"
	"github.com/MrSnakeDoc/flintmeta/internal/sources/maven"
)

// TimeLayout is the timestamp format of releaseTime and time.
const TimeLayout = "2006-01-02T15:04:05-0700"

const defaultConcurrency = 8

// Profile is a launcher version document inheriting from the vanilla game.
type Profile struct {
	ID           string            `json:"id"`
	InheritsFrom string            `json:"inheritsFrom"`
	ReleaseTime  string            `json:"releaseTime"`
	Time         string            `json:"time"`
	Type         string            `json:"type"`
	MainClass    string            `json:"mainClass"`
	Arguments    Arguments         `json:"arguments"`
	Libraries    []json.RawMessage `json:"libraries"`
}

type Arguments struct {
	Game []string `json:"game"`
	JVM  []string `json:"jvm,omitempty"`
}

// Library is a maven library reference in a profile.
type Library struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Options configures a Builder.
type Options struct {
	Name         string // profile id prefix
	EmulationArg string // client JVM argument, ex: "-DFlintMcEmu= net.minecraft.client.main.Main "
	Concurrency  int    // parallel descriptor fetches in LoaderInfos
}

// Builder fetches loader descriptors and assembles profiles.
type Builder struct {
	client  httpclient.Client
	primary *maven.Repository
	mirror  *maven.Repository

	name         string
	emulationArg string
	concurrency  int

	logger  logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewBuilder wires a Builder. Descriptors and loader libraries come from
// primary, intermediary libraries from mirror. m may be nil.
func NewBuilder(client httpclient.Client, primary, mirror *maven.Repository, opts Options, log logger.Logger, m *metrics.Metrics) *Builder {
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	return &Builder{
		client:       client,
		primary:      primary,
		mirror:       mirror,
		name:         opts.Name,
		emulationArg: opts.EmulationArg,
		concurrency:  opts.Concurrency,
		logger:       log,
		metrics:      m,
		now:          time.Now,
	}
}

// BuildProfile assembles the launch profile for side. It never mutates info.
func (b *Builder) BuildProfile(info LoaderInfo, side domain.Side) (*Profile, error) {
	meta := gjson.ParseBytes(info.LauncherMeta)
	libs := meta.Get("libraries")

	libraries := make([]json.RawMessage, 0)
	for _, l := range arrayOf(libs.Get("common")) {
		libraries = append(libraries, json.RawMessage(l.Raw))
	}

	for _, lib := range []Library{
		{Name: info.Intermediary.Maven, URL: b.mirror.BaseURL()},
		{Name: info.Loader.Maven, URL: b.primary.BaseURL()},
	} {
		raw, err := json.Marshal(lib)
		if err != nil {
			return nil, fmt.Errorf("marshal library %s: %w", lib.Name, err)
		}
		libraries = append(libraries, raw)
	}

	for _, l := range arrayOf(libs.Get(string(side))) {
		libraries = append(libraries, json.RawMessage(l.Raw))
	}

	mainClass := meta.Get("mainClass")
	if mainClass.IsObject() {
		mainClass = mainClass.Get(string(side))
	}

	args := Arguments{Game: []string{}}
	if side == domain.SideClient && b.emulationArg != "" {
		args.JVM = []string{b.emulationArg}
	}

	now := b.now().Format(TimeLayout)
	return &Profile{
		ID:           fmt.Sprintf("%s-%s-%s", b.name, info.Loader.Version, info.Intermediary.Version),
		InheritsFrom: info.Intermediary.Version,
		ReleaseTime:  now,
		Time:         now,
		Type:         "release",
		MainClass:    mainClass.String(),
		Arguments:    args,
		Libraries:    libraries,
	}, nil
}

// arrayOf returns the elements of r, or nothing when r is not an array.
func arrayOf(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}
