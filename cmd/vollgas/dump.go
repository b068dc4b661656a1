// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newDumpCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the step program of a demo circuit",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, _, err := f.circuit(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Dispose()
			ds := c.DataSource()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "// %d bytes: counter at 0, %d modulo results at %d, cells at %d\n",
				len(ds.Bytes()), ds.CountersLen(), ds.CountersOffset(), ds.CellsOffset())
			_, err = fmt.Fprint(w, c.Program())
			return err
		},
	}
}

func newWasmCmd(f *flags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "wasm",
		Short: "Write the WebAssembly step module of a demo circuit",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, _, err := f.circuit(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Dispose()
			code, err := c.Bytecode()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(code)
				return err
			}
			if err = os.WriteFile(out, code, 0644); err != nil {
				return errors.Wrapf(err, "write %s", out)
			}
			log.WithFields(log.Fields{"file": out, "bytes": len(code)}).Info("module written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}
