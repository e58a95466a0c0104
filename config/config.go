// Package config loads a network.Config from a YAML (or JSON) document,
// the way ITI-mrnes's desc-topo.go loads its own topology/timing
// descriptions: extension-dispatched Read/Write around
// gopkg.in/yaml.v3, with no validation beyond what network.NewSimpleNetwork
// itself already performs once the config is handed over.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/rubynoc/noc/network"
)

// LoadNetworkConfig reads a network.Config from filename. The file's
// extension selects the codec: .yaml/.yml for YAML, .json for JSON.
func LoadNetworkConfig(filename string) (*network.Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", filename, err)
	}

	return ParseNetworkConfig(filename, raw)
}

// ParseNetworkConfig decodes raw bytes as a network.Config, dispatching
// on name's extension the same way DevExecList.WriteToFile does.
func ParseNetworkConfig(name string, raw []byte) (*network.Config, error) {
	cfg := &network.Config{}

	switch ext := path.Ext(name); ext {
	case ".yaml", ".yml", ".YAML", ".YML":
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s as yaml: %w", name, err)
		}
	case ".json", ".JSON":
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s as json: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("config: %s: unrecognized extension %q, want .yaml/.yml/.json", name, ext)
	}

	return cfg, nil
}

// WriteNetworkConfig serializes cfg to filename, dispatching on
// extension the same way LoadNetworkConfig reads it.
func WriteNetworkConfig(filename string, cfg *network.Config) error {
	var (
		raw []byte
		err error
	)

	switch ext := path.Ext(filename); ext {
	case ".yaml", ".yml", ".YAML", ".YML":
		raw, err = yaml.Marshal(cfg)
	case ".json", ".JSON":
		raw, err = json.MarshalIndent(cfg, "", "\t")
	default:
		return fmt.Errorf("config: %s: unrecognized extension %q, want .yaml/.yml/.json", filename, ext)
	}

	if err != nil {
		return fmt.Errorf("config: marshaling %s: %w", filename, err)
	}

	if err := os.WriteFile(filename, raw, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", filename, err)
	}

	return nil
}
