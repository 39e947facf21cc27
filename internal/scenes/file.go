package scenes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is written into new scene files.
const CurrentVersion = "1"

// List is the on-disk scene sequence.
type List struct {
	Version string  `yaml:"version"`
	Scenes  []Scene `yaml:"scenes"`
}

// Write writes a scene list to a YAML file
func Write(list *List, path string) error {
	if list.Version == "" {
		list.Version = CurrentVersion
	}
	data, err := yaml.Marshal(list)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read reads and validates a scene list from a YAML file. Relative image
// paths are resolved against the file's directory.
func Read(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list List
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ValidateAll(list.Scenes); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	for i := range list.Scenes {
		img := list.Scenes[i].Image
		if !filepath.IsAbs(img) && !isURL(img) {
			list.Scenes[i].Image = filepath.Join(dir, img)
		}
	}
	return &list, nil
}

// TotalHold returns the sum of scene durations.
func (l *List) TotalHold() float64 {
	var total float64
	for _, s := range l.Scenes {
		total += s.Duration
	}
	return total
}

func isURL(s string) bool {
	for _, p := range []string{"http://", "https://", "data:"} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
