package tax

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type regimeFile struct {
	Regimes []struct {
		Name  string `yaml:"name"`
		Slabs []Band `yaml:"slabs"`
	} `yaml:"regimes"`
}

// LoadRegimesYAML parses regime definitions of the form
//
//	regimes:
//	  - name: flat
//	    slabs:
//	      - upTo: 300000
//	        rate: 0
//	      - rate: 0.1
func LoadRegimesYAML(r io.Reader) ([]Regime, error) {
	var doc regimeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode regimes: %w", err)
	}
	out := make([]Regime, 0, len(doc.Regimes))
	seen := make(map[string]struct{}, len(doc.Regimes))
	for _, def := range doc.Regimes {
		regime, err := NewRegime(def.Name, def.Slabs)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[regime.name]; dup {
			return nil, fmt.Errorf("%w: duplicate regime %q", ErrInvalidRegime, regime.name)
		}
		seen[regime.name] = struct{}{}
		out = append(out, regime)
	}
	return out, nil
}

// LoadRegimesFile reads regime definitions from a YAML file.
func LoadRegimesFile(path string) ([]Regime, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open regimes file: %w", err)
	}
	defer f.Close()
	return LoadRegimesYAML(f)
}
