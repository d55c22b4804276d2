package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// script is the YAML form accepted by -script.
type script struct {
	Commands []string `yaml:"commands"`
}

func readScript(r io.Reader) ([]string, error) {
	var sc script
	if err := yaml.NewDecoder(r).Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return sc.Commands, nil
}

type interactiveCmd struct {
	*root
	fs *flag.FlagSet

	execs      commandList
	scriptPath string
	image      string
	global     string
	aspect     string
	backendDir string
	wait       time.Duration
	masking    bool

	stdin  io.Reader
	stderr io.Writer
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	c := &interactiveCmd{root: r, fs: fs, stdin: os.Stdin, stderr: os.Stderr}
	fs.Usage = usageFunc(c)
	backend := r.config.BackendDir
	if backend == "" {
		backend = "spool"
	}
	fs.Var(&c.execs, "e", "execute interactive command in immediate mode (may be specified multiple times)")
	fs.StringVar(&c.scriptPath, "script", "", "YAML file with a commands list to execute")
	fs.StringVar(&c.image, "file", "", "image to load before running commands")
	fs.StringVar(&c.global, "prompt", "", "whole image instruction used when masking is off")
	fs.StringVar(&c.aspect, "aspect", "", "aspect ratio for generate, for example 16:9")
	fs.StringVar(&c.backendDir, "backend", backend, "spool directory shared with the image backend")
	fs.DurationVar(&c.wait, "wait", 0, "wait this long for backend results; 0 only queues requests")
	fs.BoolVar(&c.masking, "mask", true, "start with masking mode on")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *interactiveCmd) Program() string { return c.root.program + " interactive" }

func (c *interactiveCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *interactiveCmd) newSession() *session {
	s := newSession(c.ctx, c.log, c.stdout, c.newMasker(c.masking))
	s.notifier = c.notifier
	s.global = c.global
	s.aspect = c.aspect
	s.backendDir = c.backendDir
	s.wait = c.wait
	return s
}

func (c *interactiveCmd) Run() error {
	s := c.newSession()
	if c.image != "" {
		if err := s.load(c.image); err != nil {
			return err
		}
	}

	var commands []string
	if c.scriptPath != "" {
		f, err := os.Open(c.scriptPath)
		if err != nil {
			return err
		}
		commands, err = readScript(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", c.scriptPath, err)
		}
	}
	commands = append(commands, c.execs...)
	if len(commands) > 0 {
		for _, line := range commands {
			done, err := s.executeLine(line)
			if err != nil {
				return fmt.Errorf("%s: %w", line, err)
			}
			if done {
				break
			}
		}
		return nil
	}
	return c.repl(s)
}

func (c *interactiveCmd) repl(s *session) error {
	fmt.Fprintln(c.stdout, "Enter commands (type 'exit' to quit)")
	scanner := bufio.NewScanner(c.stdin)
	for {
		fmt.Fprint(c.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := s.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(c.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}
