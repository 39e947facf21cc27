package editor

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kikiluvv/framecannon/internal/clips"
	"github.com/kikiluvv/framecannon/internal/layers"
	"github.com/kikiluvv/framecannon/pkg/util"
)

// ProjectVersion is written into new project files.
const ProjectVersion = "1"

// Project is the persisted editing state.
type Project struct {
	Version   string            `yaml:"version"`
	Name      string            `yaml:"name"`
	Duration  float64           `yaml:"duration"`
	Layers    []layers.Layer    `yaml:"layers"`
	Clips     []clips.Clip      `yaml:"clips"`
	Metadata  map[string]string `yaml:"metadata,omitempty"`
	CreatedAt time.Time         `yaml:"created_at"`
	UpdatedAt time.Time         `yaml:"updated_at"`
}

// NewProject creates an empty project with the default layers.
func NewProject(name string, duration float64) *Project {
	now := time.Now().UTC()
	if name == "" {
		name = fmt.Sprintf("project_%d", now.Unix())
	}
	return &Project{
		Version:   ProjectVersion,
		Name:      name,
		Duration:  duration,
		Layers:    layers.Defaults(),
		Clips:     []clips.Clip{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SaveProject writes a project atomically.
func SaveProject(p *Project, path string) error {
	if p.Version == "" {
		p.Version = ProjectVersion
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return util.WriteFileAtomic(path, data)
}

// LoadProject reads a project file. Clips are validated by their decoder;
// clips on layers the project does not define are rejected.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(p.Layers) == 0 {
		p.Layers = layers.Defaults()
	}

	known := make(map[int64]bool, len(p.Layers))
	for _, l := range p.Layers {
		known[l.ID] = true
	}
	for _, c := range p.Clips {
		if !known[c.Layer] {
			return nil, fmt.Errorf("%w: clip %d is on unknown layer %d", clips.ErrInvalidClip, c.ID, c.Layer)
		}
	}
	return &p, nil
}
