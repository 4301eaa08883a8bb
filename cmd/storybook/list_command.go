package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var query string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(cmd, func(lib *library) error {
				out := cmd.OutOrStdout()

				if query != "" {
					res, err := lib.books.Search(cmd.Context(), query, limit)
					if err != nil {
						return err
					}
					if len(res.Hits) == 0 {
						fmt.Fprintf(out, "No books match %q\n", query)
						return nil
					}
					rows := make([][]string, 0, len(res.Hits))
					for _, hit := range res.Hits {
						rows = append(rows, []string{hit.ID, hit.Title, strconv.Itoa(hit.PageCount)})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"ID", "Title", "Pages"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignRight},
					))
					return nil
				}

				books, err := lib.books.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(books) == 0 {
					fmt.Fprintln(out, "Library is empty. Run `storybook seed` to add the built-in books.")
					return nil
				}

				rows := make([][]string, 0, len(books))
				for _, b := range books {
					rows = append(rows, []string{
						b.ID,
						b.Title,
						strconv.Itoa(b.PageCount()),
						b.Created().Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Pages", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Only list books matching this text")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum search results")

	return cmd
}
