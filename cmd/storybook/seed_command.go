package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/listenupapp/storybook/internal/seed"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var basePath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add the built-in books to an empty library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("base-path") {
				basePath = cfg.Seed.BasePath
			}

			return ctx.withLibrary(cmd, func(lib *library) error {
				inserted, err := seed.New(lib.store, basePath, lib.logger).EnsureSeeded(cmd.Context())
				if err != nil {
					return err
				}
				if inserted == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Library already has books; nothing to seed")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d built-in books\n", inserted)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&basePath, "base-path", "/", "Base path or URL the built-in image assets are served from")

	return cmd
}
