package main

import (
	"flag"
	"fmt"

	"github.com/umair4234/Thumbgenai/internal/config"
)

type configCmd struct {
	*root
	fs *flag.FlagSet
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	c := &configCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Program() string { return c.root.program + " config" }

func (c *configCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}
	switch args[0] {
	case "print":
		fmt.Fprint(c.stdout, c.effective().String())
		return nil
	case "save":
		path, err := config.NewLoader(version, configPathOverride).Save(c.effective())
		if err != nil {
			return err
		}
		c.log.Info("configuration saved", "path", path)
		return nil
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

// effective returns the loaded configuration with command line overrides
// applied.
func (c *configCmd) effective() *config.Config {
	cfg := *c.config
	cfg.BrushSize = c.brushSize
	cfg.Notify = config.Notify{Export: c.exportAlerts, Submit: c.submitAlerts, Copy: c.copyAlerts}
	if c.themeName != "" {
		cfg.Theme = c.themeName
	}
	return &cfg
}
