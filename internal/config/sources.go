package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Coordinate is a (group, artifact) pair as written in the sources file.
type Coordinate struct {
	Group    string `yaml:"group"`
	Artifact string `yaml:"artifact"`
}

// Sources describes every remote the catalog reads from.
type Sources struct {
	PrimaryRepository string `yaml:"primary_repository"`
	MirrorRepository  string `yaml:"mirror_repository"`
	VendorManifest    string `yaml:"vendor_manifest"`

	Loader       Coordinate `yaml:"loader"`
	Installer    Coordinate `yaml:"installer"`
	Mappings     Coordinate `yaml:"mappings"`
	Intermediary Coordinate `yaml:"intermediary"`

	ProfileName   string `yaml:"profile_name"`   // prefix of generated profile ids
	EmulatedMain  string `yaml:"emulated_main"`  // client JVM argument value
	EmulationFlag string `yaml:"emulation_flag"` // client JVM system property name
}

// DefaultSources matches the production deployment.
func DefaultSources() *Sources {
	return &Sources{
		PrimaryRepository: "https://maven.flintloader.net/releases/",
		MirrorRepository:  "https://maven.flintloader.net/mirror/",
		VendorManifest:    "https://launchermeta.mojang.com/mc/game/version_manifest.json",
		Loader:            Coordinate{Group: "net.flintloader", Artifact: "punch"},
		Installer:         Coordinate{Group: "net.flintloader", Artifact: "installer"},
		Mappings:          Coordinate{Group: "net.fabricmc", Artifact: "yarn"},
		Intermediary:      Coordinate{Group: "net.fabricmc", Artifact: "intermediary"},
		ProfileName:       "punch",
		EmulatedMain:      " net.minecraft.client.main.Main ",
		EmulationFlag:     "FlintMcEmu",
	}
}

// LoadSources returns DefaultSources overridden by the YAML file at path.
// An empty path means defaults only. ${VAR} references are expanded from the
// environment before parsing.
func LoadSources(path string) (*Sources, error) {
	s := DefaultSources()
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), s); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", path, err)
	}
	return s, nil
}

// Validate checks that every remote is addressable.
func (s *Sources) Validate() error {
	var errs []error
	if strings.TrimSpace(s.PrimaryRepository) == "" {
		errs = append(errs, errors.New("primary_repository is empty"))
	}
	if strings.TrimSpace(s.MirrorRepository) == "" {
		errs = append(errs, errors.New("mirror_repository is empty"))
	}
	if strings.TrimSpace(s.VendorManifest) == "" {
		errs = append(errs, errors.New("vendor_manifest is empty"))
	}
	for name, c := range map[string]Coordinate{
		"loader":       s.Loader,
		"installer":    s.Installer,
		"mappings":     s.Mappings,
		"intermediary": s.Intermediary,
	} {
		if c.Group == "" || c.Artifact == "" {
			errs = append(errs, fmt.Errorf("%s coordinate needs both group and artifact", name))
		}
	}
	if s.ProfileName == "" {
		errs = append(errs, errors.New("profile_name is empty"))
	}
	return errors.Join(errs...)
}

// EmulationArg is the client JVM argument, "-D<EmulationFlag>=<EmulatedMain>".
// Empty when no flag is configured.
func (s *Sources) EmulationArg() string {
	if s.EmulationFlag == "" {
		return ""
	}
	return "-D" + s.EmulationFlag + "=" + s.EmulatedMain
}
