package provider

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedEntry is one provider in a seed file.
type SeedEntry struct {
	Name         string   `yaml:"name"`
	Specialty    string   `yaml:"specialty"`
	Email        string   `yaml:"email"`
	Phone        string   `yaml:"phone"`
	Availability []string `yaml:"availability"`
}

type seedFile struct {
	Providers []SeedEntry `yaml:"providers"`
}

// LoadSeedFile reads a YAML document of the form
//
//	providers:
//	  - name: Dr. Sarah Johnson
//	    specialty: Family Medicine
//	    email: sarah.johnson@example.com
//	    availability: ["09:00", "10:00"]
func LoadSeedFile(path string) ([]SeedEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	entries, err := ParseSeed(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ParseSeed decodes a seed document. Unknown keys are rejected so typos
// do not silently drop data.
func ParseSeed(r io.Reader) ([]SeedEntry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return []SeedEntry{}, nil
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if f.Providers == nil {
		return []SeedEntry{}, nil
	}
	return f.Providers, nil
}
