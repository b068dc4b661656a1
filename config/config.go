// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads simulation settings from YAML files.
//
package config

import (
	"io"
	"os"

	"github.com/db47h/vollgas"
	"github.com/db47h/vollgas/hwlib"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultCyclesPerStep is the number of steps run per Circuit.Step call when
// the configuration does not set it.
//
const DefaultCyclesPerStep = 160

// File is the layout of a configuration file.
//
type File struct {
	Simulation Simulation `yaml:"simulation"`
	Elements   Elements   `yaml:"elements"`
}

// Simulation holds the circuit settings.
//
type Simulation struct {
	Backend       string `yaml:"backend"`
	CyclesPerStep int    `yaml:"cyclesPerStep"`
	EchoFunctions bool   `yaml:"echoFunctions"`
	EchoData      bool   `yaml:"echoData"`
}

// Elements holds the element library settings.
//
type Elements struct {
	WireDelay int `yaml:"wireDelay"`
	NorDelay  int `yaml:"norDelay"`
}

// Default returns the configuration used when no file is given.
//
func Default() *File {
	return &File{
		Simulation: Simulation{
			Backend:       vollgas.BackendAuto,
			CyclesPerStep: DefaultCyclesPerStep,
		},
	}
}

// Load reads the configuration file at path. Environment variables in path
// are expanded.
//
func Load(path string) (*File, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read reads a configuration from r. Unset or negative values are replaced by
// their defaults.
//
func Read(r io.Reader) (*File, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err = yaml.UnmarshalStrict(d, cfg); err != nil {
		return nil, errors.Wrap(err, "parse configuration")
	}

	s := &cfg.Simulation
	switch s.Backend {
	case "":
		s.Backend = vollgas.BackendAuto
	case vollgas.BackendAuto, vollgas.BackendBytecode, vollgas.BackendInterpreter:
	default:
		return nil, errors.Errorf("unknown backend %q", s.Backend)
	}
	if s.CyclesPerStep <= 0 {
		s.CyclesPerStep = DefaultCyclesPerStep
	}
	if cfg.Elements.WireDelay < 0 {
		cfg.Elements.WireDelay = 0
	}
	if cfg.Elements.NorDelay < 0 {
		cfg.Elements.NorDelay = 0
	}
	return cfg, nil
}

// Options returns the circuit options matching the simulation settings.
//
func (f *File) Options() []vollgas.Option {
	return []vollgas.Option{
		vollgas.WithBackend(f.Simulation.Backend),
		vollgas.WithEcho(f.Simulation.EchoFunctions, f.Simulation.EchoData),
	}
}

// ElementConfig returns the element library configuration.
//
func (f *File) ElementConfig() hwlib.Config {
	return hwlib.Config{
		WireDelay: f.Elements.WireDelay,
		NorDelay:  f.Elements.NorDelay,
	}
}
