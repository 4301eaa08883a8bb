package main

import (
	"bytes"
	"encoding/json/v2"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/storybook/internal/domain"
	"github.com/listenupapp/storybook/internal/id"
)

const importBatchSize = 100

func newImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Add or replace books from exported JSON files",
		Long: "Each file holds one book or an array of books. Books keep their ids, " +
			"so importing an export again replaces the same records.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var books []*domain.Book
			for _, path := range args {
				parsed, err := readBookFile(path)
				if err != nil {
					return err
				}
				books = append(books, parsed...)
			}

			return ctx.withLibrary(cmd, func(lib *library) error {
				batch := lib.store.NewBatchWriter(importBatchSize)
				for _, book := range books {
					if err := batch.PutBook(cmd.Context(), book); err != nil {
						batch.Cancel()
						return fmt.Errorf("import %s: %w", book.ID, err)
					}
				}
				if err := batch.Flush(cmd.Context()); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d books\n", batch.Written())
				return nil
			})
		},
	}

	return cmd
}

// readBookFile parses one exported book or an array of them. Records without
// an id or creation time get fresh ones; everything else is stored as given.
func readBookFile(path string) ([]*domain.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var books []*domain.Book
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &books)
	} else {
		var book domain.Book
		err = json.Unmarshal(data, &book)
		books = []*domain.Book{&book}
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, book := range books {
		if book == nil {
			return nil, fmt.Errorf("parse %s: null book", path)
		}
		if strings.TrimSpace(book.ID) == "" {
			if book.ID, err = id.NewBookID(); err != nil {
				return nil, err
			}
		}
		if book.CreatedAt == 0 {
			book.CreatedAt = domain.NowMillis()
		}
		for i := range book.Pages {
			if book.Pages[i].ID == "" {
				book.Pages[i].ID = id.NewPageID()
			}
		}
	}
	return books, nil
}
