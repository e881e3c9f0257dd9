package maven

import (
	"fmt"
	"strings"
)

// Coordinate identifies a repository-hosted component.
type Coordinate struct {
	Group    string
	Artifact string
}

// ParseID splits a "group:artifact:version" identifier.
func ParseID(id string) (Coordinate, string, error) {
	parts := strings.Split(id, ":")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Coordinate{}, "", fmt.Errorf("invalid maven id %q: expected group:artifact:version", id)
	}
	return Coordinate{Group: parts[0], Artifact: parts[1]}, parts[2], nil
}

// String returns "group:artifact".
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact
}

// GroupPath turns the dotted group into a path, "net.fabricmc" -> "net/fabricmc".
func (c Coordinate) GroupPath() string {
	return strings.ReplaceAll(c.Group, ".", "/")
}

// Artifact is one published version of a coordinate in a given repository.
type Artifact struct {
	Coordinate
	Version string

	baseURL string
}

// MavenID returns "group:artifact:version".
func (a Artifact) MavenID() string {
	return fmt.Sprintf("%s:%s:%s", a.Group, a.Coordinate.Artifact, a.Version)
}

// URL returns the download location of the artifact file with extension ext.
func (a Artifact) URL(ext string) string {
	return fmt.Sprintf("%s%s/%s/%s/%s-%s.%s",
		a.baseURL, a.GroupPath(), a.Coordinate.Artifact, a.Version, a.Coordinate.Artifact, a.Version, ext)
}

// JarURL is URL("jar").
func (a Artifact) JarURL() string {
	return a.URL("jar")
}
