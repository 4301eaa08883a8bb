package main

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/listenupapp/storybook/internal/media/images"
)

func newEncodeImageCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "encode-image <file>",
		Short: "Print an image as a data URI usable as a cover or page image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			encoded, err := images.NewEncoder(cfg.Images.MaxDimension).Encode(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.MarshalWrite(out, encoded, jsontext.WithIndent("  "))
			}
			if encoded.Resized {
				fmt.Fprintf(cmd.ErrOrStderr(), "downscaled to %dx%d\n", encoded.Width, encoded.Height)
			}
			fmt.Fprintln(out, encoded.DataURI)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the data URI with its type and dimensions as JSON")

	return cmd
}
