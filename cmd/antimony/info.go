package main

import (
	"encoding/json"
	"os"

	"antimony"
	"antimony/internal/metrics"

	"github.com/spf13/cobra"
)

var infoModule string

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print everything known about a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(metrics.NewRegistry())
		if _, err := s.LoadFile(args[0]); err != nil {
			return err
		}
		return s.PrintAllDataFor(os.Stdout, infoModule)
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Write the module graph of a file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSession(metrics.NewRegistry())
		if _, err := s.LoadFile(args[0]); err != nil {
			return err
		}
		mods, err := s.Describe()
		if err != nil {
			return err
		}
		if err := antimony.ValidateDescription(mods); err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(mods)
	},
}

func init() {
	infoCmd.Flags().StringVarP(&infoModule, "module", "m", "", "Module to print (default: the main module)")
}
