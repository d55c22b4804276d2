package main

import (
	"flag"
	"path/filepath"

	"github.com/umair4234/Thumbgenai/internal/appstate"
)

type editCmd struct {
	*root
	fs      *flag.FlagSet
	file    string
	output  string
	masking bool
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "image path or http(s) URL to mask")
	fs.StringVar(&e.output, "output", r.config.OutputDir, "directory that Ctrl+S exports into")
	fs.BoolVar(&e.masking, "mask", true, "start with masking mode on")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.file == "" && fs.NArg() > 0 {
		e.file = fs.Arg(0)
	}
	if e.file == "" {
		return nil, &UsageError{of: e}
	}
	if e.output == "" {
		e.output = "."
	}
	return e, nil
}

func (e *editCmd) Program() string { return e.root.program + " edit" }

func (e *editCmd) FlagSet() *flag.FlagSet { return e.fs }

func (e *editCmd) Run() error {
	st := appstate.New(
		appstate.WithMasker(e.newMasker(e.masking)),
		appstate.WithSource(e.file),
		appstate.WithTitle("thumbmask - "+filepath.Base(e.file)),
		appstate.WithOutputDir(e.output),
		appstate.WithTheme(e.activeTheme),
		appstate.WithNotifier(e.notifier),
		appstate.WithLogger(e.log),
	)
	st.Run()
	return nil
}
