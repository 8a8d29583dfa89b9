package config

import (
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Weftfile represents the structure of the weft.yaml configuration file.
type Weftfile struct {
	Version string     `yaml:"version"`
	Modules ModuleList `yaml:"modules"`
}

// ModuleDTO represents a module definition in the configuration.
type ModuleDTO struct {
	DependsOn []string    `yaml:"dependsOn"`
	Exports   []string    `yaml:"exports"`
	Imports   []ImportDTO `yaml:"imports"`
}

// ImportDTO represents a single imported binding.
type ImportDTO struct {
	From string `yaml:"from"`
	Name string `yaml:"name"`
}

// NamedModule is a module definition together with its key in the modules mapping.
type NamedModule struct {
	Name string
	ModuleDTO
}

// ModuleList holds the modules mapping in file order.
type ModuleList []NamedModule

// UnmarshalYAML decodes a mapping of module names to definitions, keeping the
// order in which the names appear.
func (l *ModuleList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return zerr.With(zerr.New("modules must be a mapping"), "line", value.Line)
	}

	seen := make(map[string]struct{}, len(value.Content)/2)
	out := make(ModuleList, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, body := value.Content[i], value.Content[i+1]

		var name string
		if err := key.Decode(&name); err != nil {
			return zerr.With(zerr.Wrap(err, "invalid module name"), "line", key.Line)
		}
		if _, dup := seen[name]; dup {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrModuleAlreadyExists, "duplicate module key"),
				"module", name), "line", key.Line)
		}
		seen[name] = struct{}{}

		var dto ModuleDTO
		if err := body.Decode(&dto); err != nil {
			return zerr.With(zerr.Wrap(err, "invalid module definition"), "module", name)
		}
		out = append(out, NamedModule{Name: name, ModuleDTO: dto})
	}

	*l = out
	return nil
}
