package importer

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/liamwears/marquee/internal/models"
)

//go:embed titles.yaml
var defaultTitles []byte

// Title is one entry of the import list
type Title struct {
	ExternalID   string      `yaml:"externalId"`
	Kind         models.Kind `yaml:"kind"`
	Featured     bool        `yaml:"featured"`
	DisplayTitle string      `yaml:"title"`
}

// Label returns the display title, falling back to the external ID
func (t Title) Label() string {
	if t.DisplayTitle != "" {
		return t.DisplayTitle
	}
	return t.ExternalID
}

type titleFile struct {
	Titles []Title `yaml:"titles"`
}

// LoadTitles reads the import list from path, or the built-in list when path is empty
func LoadTitles(path string) ([]Title, error) {
	data := defaultTitles
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read titles file: %w", err)
		}
	}
	return ParseTitles(data)
}

// ParseTitles decodes a YAML import list. Entries without an external ID are rejected.
func ParseTitles(data []byte) ([]Title, error) {
	var file titleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse titles: %w", err)
	}

	for i := range file.Titles {
		t := &file.Titles[i]
		t.ExternalID = strings.TrimSpace(t.ExternalID)
		if t.ExternalID == "" {
			return nil, fmt.Errorf("title %d: externalId is required", i+1)
		}
		t.Kind = models.ParseKind(string(t.Kind))
	}

	return file.Titles, nil
}
