// gdsdump inspects GDSII stream files: library statistics, hierarchy
// checks, and round-trip verification. It is a thin shell over pkg/gds;
// all decoding and validation lives there.
package main

import (
	"bytes"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/layoutkit/gdsgo/pkg/gds"
)

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	var verbose bool

	log := charmlog.New(os.Stderr)

	root := &cobra.Command{
		Use:          "gdsdump",
		Short:        "Inspect GDSII stream files",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newInfoCmd(log))
	root.AddCommand(newCheckCmd(log))
	root.AddCommand(newRoundtripCmd(log))

	err := root.Execute()
	if err != nil {
		log.Error("failed", "err", err)
	}
	return err
}

func newInfoCmd(log *charmlog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.gds>",
		Short: "Print library name, units and per-structure element counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := gds.ReadFile(args[0])
			if err != nil {
				return err
			}
			log.Debug("decoded", "structures", len(lib.Structures))

			fmt.Printf("library   %s (version %d)\n", lib.Name, lib.Version)
			fmt.Printf("units     %g user, %g m per database unit\n", lib.UserUnit, lib.MeterUnit)
			stats := gds.Stats(lib)
			fmt.Printf("elements  %d in %d structures, %d references, layers %v\n",
				stats.Elements, len(stats.Structures), stats.References, stats.Layers)
			for _, s := range stats.Structures {
				fmt.Printf("  %-32s %5d elements %5d refs\n", s.Name, s.Elements, s.References)
			}
			return nil
		},
	}
}

func newCheckCmd(log *charmlog.Logger) *cobra.Command {
	var permissive bool
	cmd := &cobra.Command{
		Use:   "check <file.gds>",
		Short: "Resolve the structure hierarchy and report problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := gds.ReadFile(args[0])
			if err != nil {
				return err
			}
			policy := gds.Strict
			if permissive {
				policy = gds.Permissive
			}
			res, err := gds.Resolve(lib, policy)
			for _, d := range res.Dangling {
				log.Warn("dangling reference", "from", d.From, "to", d.To)
			}
			for _, c := range res.Cycles {
				log.Warn("reference cycle", "path", c)
			}
			if err != nil {
				return err
			}
			log.Info("hierarchy ok", "structures", len(res.Table), "roots", res.Roots)
			return nil
		},
	}
	cmd.Flags().BoolVar(&permissive, "permissive", false, "do not fail on dangling references")
	return cmd
}

func newRoundtripCmd(log *charmlog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <file.gds>",
		Short: "Decode, re-encode and compare against the input bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			lib, err := gds.Decode(data)
			if err != nil {
				return err
			}
			out, err := gds.Encode(lib)
			if err != nil {
				return err
			}
			if bytes.Equal(out, data) {
				log.Info("round trip byte-identical", "bytes", len(data))
				return nil
			}
			// Trailing zero padding and re-rounded reals are the two
			// accepted sources of difference.
			log.Warn("round trip differs", "in", len(data), "out", len(out))
			return nil
		},
	}
}
