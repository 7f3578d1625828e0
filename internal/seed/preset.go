package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Preset is a named seeding scenario. Presets ship built in and can be
// overridden or extended from a YAML file.
type Preset struct {
	NumDoctors  int     `yaml:"doctors"`
	NumPatients int     `yaml:"patients"`
	NumPosts    int     `yaml:"posts"`
	DraftShare  float64 `yaml:"draft_share"`
	ShouldClean bool    `yaml:"clean"`
	SkipBcrypt  bool    `yaml:"skip_bcrypt"`
}

var builtinPresets = map[string]Preset{
	"Minimal": {
		NumDoctors:  2,
		NumPatients: 3,
		NumPosts:    8,
		DraftShare:  0.25,
		ShouldClean: true,
	},
	"Demo": {
		NumDoctors:  10,
		NumPatients: 40,
		NumPosts:    120,
		DraftShare:  0.2,
		ShouldClean: true,
	},
	"LoadTest": {
		NumDoctors:  50,
		NumPatients: 500,
		NumPosts:    5000,
		DraftShare:  0.1,
		ShouldClean: true,
		SkipBcrypt:  true,
	},
}

// LoadPresets merges presets from a YAML file over the built-in set.
// The file maps preset names to their settings:
//
//	Demo:
//	  doctors: 5
//	  patients: 20
//	  posts: 60
//	  draft_share: 0.2
//	  clean: true
func LoadPresets(path string) (map[string]Preset, error) {
	presets := make(map[string]Preset, len(builtinPresets))
	for name, p := range builtinPresets {
		presets[name] = p
	}

	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset file: %w", err)
	}

	var fromFile map[string]Preset
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parse preset file %s: %w", path, err)
	}
	for name, p := range fromFile {
		presets[name] = p
	}
	return presets, nil
}

// ApplyPreset runs the named preset, consulting the optional YAML file
// first. Unknown names list the available presets in the error.
func ApplyPreset(db *gorm.DB, path, name string) error {
	presets, err := LoadPresets(path)
	if err != nil {
		return err
	}

	preset, ok := presets[name]
	if !ok {
		names := make([]string, 0, len(presets))
		for n := range presets {
			names = append(names, n)
		}
		return fmt.Errorf("unknown preset %q (available: %v)", name, names)
	}

	return Seed(db, Options{
		NumDoctors:  preset.NumDoctors,
		NumPatients: preset.NumPatients,
		NumPosts:    preset.NumPosts,
		DraftShare:  preset.DraftShare,
		ShouldClean: preset.ShouldClean,
		SkipBcrypt:  preset.SkipBcrypt,
	})
}
