package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"audiocap/internal/recordctl"
	"audiocap/internal/supervisor"
)

func newRecordCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newStartCommand(ctx),
		newStopCommand(ctx),
		newStatusCommand(ctx),
	}
}

func newStartCommand(ctx *commandContext) *cobra.Command {
	var opts recordctl.StartOptions
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Record microphone and system audio into one file",
		Long: "Record microphone and system audio into one file.\n\n" +
			"Without --background the recording runs until ffmpeg exits, the --duration\n" +
			"limit is reached, or Ctrl+C is pressed. With --background ffmpeg is detached\n" +
			"and can be stopped later with 'audiocap stop'.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			ffmpegOut := stdout
			if asJSON {
				ffmpegOut = cmd.ErrOrStderr()
			}
			ctl, err := ctx.controller(ffmpegOut, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			result, err := ctl.Start(cmd.Context(), opts)
			if err != nil {
				var exitErr *supervisor.ExitError
				if errors.As(err, &exitErr) && exitErr.Interrupted {
					return fmt.Errorf("recording interrupted: %w", err)
				}
				return err
			}

			return emit(cmd, asJSON, result, func() error {
				switch result.Status {
				case recordctl.StartStatusStarted:
					fmt.Fprintf(stdout, "Recording in background (pid %d)\n", result.PID)
					fmt.Fprintf(stdout, "Output: %s\n", result.File)
					fmt.Fprintln(stdout, "Stop with: audiocap stop")
				default:
					fmt.Fprintf(stdout, "Recording saved to %s\n", result.File)
					if result.Upload != nil {
						fmt.Fprintf(stdout, "Uploaded to s3://%s/%s\n", result.Upload.Bucket, result.Upload.Key)
					}
					if result.UploadError != "" {
						fmt.Fprintf(stdout, "Upload failed: %s\n", result.UploadError)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Background, "background", "b", false, "Detach ffmpeg and return immediately")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file (default: timestamped file in the recordings directory)")
	cmd.Flags().StringVarP(&opts.Duration, "duration", "d", "", "Stop after this long, passed to ffmpeg -t (e.g. 00:30:00 or 1800)")
	cmd.Flags().StringVar(&opts.Microphone, "mic", "", "Microphone device identifier")
	cmd.Flags().StringVar(&opts.System, "system", "", "System audio (loopback) device identifier")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output container: wav or mp3")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background recording",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			ctl, err := ctx.controller(stdout, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			result, err := ctl.Stop()
			switch {
			case errors.Is(err, recordctl.ErrNoRecording):
				return stopFailure(cmd, asJSON, "not_found", err)
			case errors.Is(err, recordctl.ErrNotRunning):
				return stopFailure(cmd, asJSON, string(recordctl.StateNotRunning), err)
			case err != nil:
				return err
			}
			return emit(cmd, asJSON, result, func() error {
				fmt.Fprintf(stdout, "Stopped recording (pid %d)\n", result.PID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

// stopFailure reports a stop that found nothing to stop. The command still
// exits non-zero; with --json the status body is printed first.
func stopFailure(cmd *cobra.Command, asJSON bool, status string, err error) error {
	if asJSON {
		if jsonErr := emit(cmd, true, recordctl.StopResult{Status: status}, nil); jsonErr != nil {
			return jsonErr
		}
	}
	return err
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a background recording is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			ctl, err := ctx.controller(stdout, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			status, err := ctl.Status()
			if err != nil {
				return err
			}
			return emit(cmd, asJSON, status, func() error {
				renderRecordingStatus(stdout, status, ctl.PIDPath(), shouldColorize(stdout))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
