package maven

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Metadata is the ordered, de-duplicated version list of one coordinate.
// It is immutable once returned.
type Metadata struct {
	coord    Coordinate
	baseURL  string
	versions []string
	set      map[string]struct{}
}

func newMetadata(baseURL string, coord Coordinate, versions []string) *Metadata {
	set := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		set[v] = struct{}{}
	}
	return &Metadata{coord: coord, baseURL: baseURL, versions: versions, set: set}
}

// Coordinate returns the coordinate the listing belongs to.
func (m *Metadata) Coordinate() Coordinate { return m.coord }

// Len returns the number of versions.
func (m *Metadata) Len() int { return len(m.versions) }

// Versions returns a copy of the raw version strings, newest first.
func (m *Metadata) Versions() []string { return slices.Clone(m.versions) }

// Contains reports whether version is listed.
func (m *Metadata) Contains(version string) bool {
	_, ok := m.set[version]
	return ok
}

// Artifacts wraps every version into an Artifact, preserving order.
func (m *Metadata) Artifacts() []Artifact {
	out := make([]Artifact, 0, len(m.versions))
	for _, v := range m.versions {
		out = append(out, m.Artifact(v))
	}
	return out
}

// Artifact wraps a single version.
func (m *Metadata) Artifact(version string) Artifact {
	return Artifact{Coordinate: m.coord, Version: version, baseURL: m.baseURL}
}

// ReadVersions streams a maven-metadata.xml document and returns every
// distinct <version> value, most recently declared first.
func ReadVersions(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	seen := make(map[string]struct{})
	var versions []string

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "version" {
			continue
		}

		var text string
		if err := dec.DecodeElement(&text, &se); err != nil {
			return nil, fmt.Errorf("parse <version>: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		versions = append(versions, text)
	}

	slices.Reverse(versions)
	return versions, nil
}
