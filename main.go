/*
Draws a single triangle offscreen with Vulkan. Configuration is read from
config.toml in the working directory, or from the path given as the only
argument.
*/
package main

import (
	"os"

	"github.com/spaghettifunk/tricore/engine"
	"github.com/spaghettifunk/tricore/engine/core"
)

func main() {
	path := "config.toml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := core.LoadConfig(path)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		core.LogFatal("invalid log level %q: %s", cfg.Log.Level, err)
	}

	e, err := engine.New(cfg)
	if err != nil {
		core.LogFatal(err.Error())
	}

	err = e.Initialize()
	if err == nil {
		err = e.Run()
	}
	if serr := e.Shutdown(); serr != nil {
		core.LogError(serr.Error())
	}
	if err != nil {
		core.LogFatal(err.Error())
	}
}
