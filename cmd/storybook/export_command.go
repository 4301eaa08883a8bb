package main

import (
	"bytes"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/listenupapp/storybook/internal/domain"
	"github.com/listenupapp/storybook/internal/util"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every book to its own JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create export directory: %w", err)
			}

			return ctx.withLibrary(cmd, func(lib *library) error {
				books, err := lib.books.List(cmd.Context())
				if err != nil {
					return err
				}

				for _, book := range books {
					path := filepath.Join(dir, exportFileName(book))
					if err := writeBookFile(path, book); err != nil {
						return err
					}
					lib.logger.Debug("exported book", "id", book.ID, "path", path)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d books to %s\n", len(books), dir)
				return nil
			})
		},
	}

	return cmd
}

// exportFileName is <slug>-<id>.json; the id keeps books with equal titles apart.
func exportFileName(book *domain.Book) string {
	return util.Slugify(book.Title) + "-" + book.ID + ".json"
}

func writeBookFile(path string, book *domain.Book) error {
	data, err := json.Marshal(book, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("marshal book %s: %w", book.ID, err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
