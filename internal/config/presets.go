package config

import "sort"

// Presets override the particle and run settings of DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"sparse": func(c *Config) {
		c.Count = 150
		c.Path = "still"
	},
	"dense": func(c *Config) {
		c.Count = 2000
		c.Path = "lissajous"
	},
	"swarm": func(c *Config) {
		c.Count = 5000
		c.Workers = 4
		c.Frames = 1200
		c.Path = "lissajous"
		c.Radius = 500
	},
	"calm": func(c *Config) {
		c.Count = 300
		c.Path = "circle"
		c.Radius = 80
		c.Bloom.Strength = 0.2
	},
}

// GetPreset returns DefaultConfig with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
