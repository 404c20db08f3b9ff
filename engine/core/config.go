package core

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config is the on-disk configuration of the triangle tool.
type Config struct {
	Application ApplicationConfig `toml:"application"`
	Render      RenderConfig      `toml:"render"`
	Shaders     ShaderConfig      `toml:"shaders"`
	Output      OutputConfig      `toml:"output"`
	Log         LogConfig         `toml:"log"`
	Platform    PlatformConfig    `toml:"platform"`
	Validation  ValidationConfig  `toml:"validation"`
}

type ApplicationConfig struct {
	Name   string `toml:"name"`
	Engine string `toml:"engine"`
}

type RenderConfig struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

// ShaderConfig points at compiled SPIR-V binaries.
type ShaderConfig struct {
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

type OutputConfig struct {
	// Bitmap is where the read-back image is written. Empty skips read-back.
	Bitmap string `toml:"bitmap"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type PlatformConfig struct {
	// Loader is "default" (system Vulkan loader) or "glfw".
	Loader string `toml:"loader"`
}

type ValidationConfig struct {
	// Layers are requested in addition to the build-time validation layers.
	Layers []string `toml:"layers"`
}

// DefaultConfig mirrors config.toml.
func DefaultConfig() Config {
	return Config{
		Application: ApplicationConfig{
			Name:   "Hello Triangle",
			Engine: "No Engine",
		},
		Render: RenderConfig{
			Width:  500,
			Height: 300,
		},
		Shaders: ShaderConfig{
			Vertex:   "shaders/vert.spv",
			Fragment: "shaders/frag.spv",
		},
		Log:      LogConfig{Level: "info"},
		Platform: PlatformConfig{Loader: "default"},
	}
}

// LoadConfig reads path over DefaultConfig. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			LogDebug("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := ParseConfig(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes TOML data into cfg and validates the result.
func ParseConfig(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

func (c Config) Validate() error {
	if c.Render.Width == 0 || c.Render.Height == 0 {
		return errors.Errorf("render extent must be non-zero, got %dx%d", c.Render.Width, c.Render.Height)
	}
	switch c.Platform.Loader {
	case "default", "glfw":
	default:
		return errors.Errorf("unknown platform loader %q", c.Platform.Loader)
	}
	return nil
}

// RequestedLayers returns the build-time validation layers followed by the
// configured extra layers.
func (c Config) RequestedLayers() []string {
	layers := append([]string{}, DefaultValidationLayers()...)
	return append(layers, c.Validation.Layers...)
}
