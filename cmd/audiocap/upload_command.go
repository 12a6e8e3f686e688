package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"audiocap/internal/config"
	"audiocap/internal/upload"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var check bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a recording to the configured bucket",
		Long: "Upload a recording to the configured bucket.\n\n" +
			"With --check a small probe object is written and deleted instead, to\n" +
			"verify credentials and bucket access.",
		Args: func(cmd *cobra.Command, args []string) error {
			if check {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			uploader, err := upload.New(cfg.Upload, logger)
			if errors.Is(err, upload.ErrNotConfigured) {
				return fmt.Errorf("%w: set [upload] enabled, bucket, and credentials in the config file", err)
			}
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()

			if check {
				if err := uploader.Check(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Bucket %s is writable\n", cfg.Upload.Bucket)
				return nil
			}

			file, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			result, err := uploader.Upload(cmd.Context(), file)
			if err != nil {
				return err
			}
			return emit(cmd, asJSON, result, func() error {
				fmt.Fprintf(stdout, "Uploaded %s to s3://%s/%s (%d bytes)\n", file, result.Bucket, result.Key, result.Size)
				if result.DeletedLocal {
					fmt.Fprintln(stdout, "Local copy removed")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Verify bucket access without uploading a recording")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
