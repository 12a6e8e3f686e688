package main

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"audiocap/internal/deps"
	"audiocap/internal/preflight"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List capture devices using the platform's own tools",
		Long: "List capture devices using the platform's own tools.\n\n" +
			"The output is printed as the tools produce it. Pass the identifiers to\n" +
			"'audiocap start --mic' and '--system'.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := ctx.controller(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return ctl.ListDevices(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Capture", colorize) {
				fmt.Fprintln(stdout, line)
			}
			ctl, err := ctx.controller(stdout, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			backend, err := ctl.Backend()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, renderStatusLine("Backend", statusInfo, backend, colorize))
			if inputs, err := ctl.ResolveInputs(); err != nil {
				fmt.Fprintln(stdout, renderStatusLine("Devices", statusWarn, err.Error(), colorize))
			} else {
				fmt.Fprintln(stdout, renderStatusLine("System", statusOK, inputs.System.Device, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Microphone", statusOK, inputs.Microphone.Device, colorize))
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg, logger) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(stdout, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if !cfg.Upload.Enabled {
				fmt.Fprintln(stdout, renderStatusLine("Upload", statusInfo, "Disabled", colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			statuses := deps.CheckBinaries(deps.Requirements(runtime.GOOS, cfg.FFmpeg.Binary))
			fmt.Fprintln(stdout, renderDependencyTable(statuses, colorize))

			var missing []string
			for _, st := range statuses {
				if !st.Available && !st.Optional {
					missing = append(missing, st.Name)
				}
			}
			if len(missing) > 0 {
				return errors.New("missing required tools: " + strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
