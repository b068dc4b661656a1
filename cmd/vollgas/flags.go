// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"

	"github.com/db47h/vollgas"
	"github.com/db47h/vollgas/config"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// flags common to all sub commands.
type flags struct {
	configPath string
	demo       string
	backend    string
}

func (f *flags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&f.demo, "demo", "d", "clock", "demo circuit: "+demoNames())
	pf.StringVarP(&f.backend, "backend", "b", "", "backend: auto, bytecode or interpreter (overrides the configuration file)")
}

func (f *flags) config() (*config.File, error) {
	if f.configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(f.configPath)
	return cfg, errors.Wrapf(err, "load %s", f.configPath)
}

// circuit loads the configuration and builds the selected demo circuit.
func (f *flags) circuit(ctx context.Context) (*vollgas.Circuit, *demo, *config.File, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, nil, nil, err
	}
	d, err := newDemo(f.demo, cfg.ElementConfig(), cfg.Simulation.CyclesPerStep)
	if err != nil {
		return nil, nil, nil, err
	}
	opts := append(cfg.Options(), vollgas.WithLogger(log.StandardLogger()), vollgas.WithName(f.demo))
	if f.backend != "" {
		opts = append(opts, vollgas.WithBackend(f.backend))
	}
	c, err := vollgas.NewCircuit(ctx, d.root, opts...)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "build %s circuit", f.demo)
	}
	return c, d, cfg, nil
}
