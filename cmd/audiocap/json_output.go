package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// emit writes v as indented JSON when asJSON is set and otherwise calls human.
func emit(cmd *cobra.Command, asJSON bool, v any, human func() error) error {
	if !asJSON {
		return human()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
