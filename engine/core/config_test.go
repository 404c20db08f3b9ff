package core_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spaghettifunk/tricore/engine/core"
)

func TestParseConfig(t *testing.T) {
	c := qt.New(t)

	data := []byte(`
[application]
name = "Offscreen"

[render]
width = 640
height = 480

[output]
bitmap = "out.bmp"

[platform]
loader = "glfw"

[validation]
layers = ["VK_LAYER_LUNARG_api_dump"]
`)
	cfg := core.DefaultConfig()
	c.Assert(core.ParseConfig(data, &cfg), qt.IsNil)

	c.Assert(cfg.Application.Name, qt.Equals, "Offscreen")
	// untouched keys keep their defaults
	c.Assert(cfg.Application.Engine, qt.Equals, "No Engine")
	c.Assert(cfg.Shaders.Vertex, qt.Equals, "shaders/vert.spv")
	c.Assert(cfg.Render, qt.Equals, core.RenderConfig{Width: 640, Height: 480})
	c.Assert(cfg.Output.Bitmap, qt.Equals, "out.bmp")
	c.Assert(cfg.Platform.Loader, qt.Equals, "glfw")

	want := append(core.DefaultValidationLayers(), "VK_LAYER_LUNARG_api_dump")
	c.Assert(cfg.RequestedLayers(), qt.DeepEquals, want)
}

func TestParseConfigInvalid(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name string
		data string
		err  string
	}{{
		name: "zero width",
		data: "[render]\nwidth = 0\n",
		err:  `render extent must be non-zero, got 0x300`,
	}, {
		name: "unknown loader",
		data: "[platform]\nloader = \"sdl\"\n",
		err:  `unknown platform loader "sdl"`,
	}, {
		name: "malformed",
		data: "[render\n",
		err:  `(?s).+`,
	}}
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			cfg := core.DefaultConfig()
			c.Assert(core.ParseConfig([]byte(test.data), &cfg), qt.ErrorMatches, test.err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()

	cfg, err := core.LoadConfig(filepath.Join(dir, "missing.toml"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, core.DefaultConfig())

	path := filepath.Join(dir, "config.toml")
	err = os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644)
	c.Assert(err, qt.IsNil)
	cfg, err = core.LoadConfig(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Log.Level, qt.Equals, "debug")

	err = os.WriteFile(path, []byte("[render]\nheight = 0\n"), 0o644)
	c.Assert(err, qt.IsNil)
	_, err = core.LoadConfig(path)
	c.Assert(err, qt.ErrorMatches, `parsing config .*: render extent must be non-zero, got 500x0`)
}

func TestDefaultValidationLayers(t *testing.T) {
	c := qt.New(t)

	if core.ValidationEnabled {
		c.Assert(core.DefaultValidationLayers(), qt.DeepEquals, []string{core.KhronosValidationLayer})
	} else {
		c.Assert(core.DefaultValidationLayers(), qt.HasLen, 0)
	}
}
