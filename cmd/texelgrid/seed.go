// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelgrid/seed.go
// Summary: Populates the SQLite item store.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framegrace/texelgrid/source"
)

// snippets gives the code text mode something for the highlighter to colour.
var snippets = []string{
	"func main() { fmt.Println(%d) }",
	"SELECT * FROM items WHERE id = %d;",
	"let x = %d; console.log(x);",
	"def item(): return %d",
	"#include <stdio.h> // %d",
	"{\"id\": %d}",
}

func snippetText(i int) string {
	return fmt.Sprintf(snippets[i%len(snippets)], i+1)
}

func newSeedCmd(s *settings) *cobra.Command {
	var (
		count int
		text  string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the SQLite database with generated items",
		Long: `Seed replaces the contents of the SQLite item store with generated items.
Text is either the 1-based item number or a rotating set of code snippets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := s.options(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("count") {
				count = cfg.Total
			}
			if count < 0 {
				return fmt.Errorf("--count must not be negative, got %d", count)
			}

			var textFn func(int) string
			switch text {
			case "number":
				textFn = source.NumberText
			case "code":
				textFn = snippetText
			default:
				return fmt.Errorf("unknown text mode %q (want number or code)", text)
			}

			if cfg.DBPath == "" {
				return fmt.Errorf("no database path: pass --db")
			}
			db, err := source.OpenSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Seed(cmd.Context(), count, textFn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d items into %s\n", count, db.Path())
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "number of items (default: configured total)")
	cmd.Flags().StringVar(&text, "text", "number", "item text: number or code")
	return cmd
}
