// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command vollgas runs demo circuits built from the hwlib element library.
//
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "vollgas",
		Short: "NOR gate circuit simulator",
		Long:  `A discrete time simulator for circuits built from NOR gates.`,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
		SilenceUsage: true,
	}

	var f flags
	f.register(rootCmd)
	rootCmd.AddCommand(newRunCmd(&f), newDumpCmd(&f), newWasmCmd(&f))

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
