package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/orgball2608/contentflow/internal/feedimport"
	"github.com/orgball2608/contentflow/pkg/formatter"
	"github.com/spf13/cobra"
)

var (
	importPlatform string
	importStatus   string
)

var importCmd = &cobra.Command{
	Use:   "import <url|file|->",
	Short: "Import RSS or Atom items as posts",
	Long: `Import RSS or Atom items as posts of one platform. Items already present
with the same title and body are skipped.

Examples:
  contentctl import https://example.substack.com/feed --platform newsletter
  contentctl import ./feed.xml --platform linkedin --status draft
  curl -s https://example.com/atom.xml | contentctl import - --platform twitter`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importPlatform, "platform", "", "platform the posts belong to, or doc")
	importCmd.Flags().StringVar(&importStatus, "status", "", "status of the created posts (default published)")
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := listFilter(importPlatform, importStatus)
	if err != nil {
		return err
	}
	opts := feedimport.Options{Platform: f.Platform, Status: f.Status}
	source := args[0]

	return withDeps(cmd.Context(), func(d deps) error {
		var res feedimport.Result
		switch {
		case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
			res, err = d.Importer.ImportURL(cmd.Context(), source, opts)
		case source == "-":
			res, err = d.Importer.ImportReader(cmd.Context(), cmd.InOrStdin(), opts)
		default:
			file, openErr := os.Open(source)
			if openErr != nil {
				return openErr
			}
			defer file.Close()
			res, err = d.Importer.ImportReader(cmd.Context(), file, opts)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %s, skipped %s\n",
			res.Title, formatter.FormatNumber(len(res.Imported)), formatter.FormatNumber(res.Skipped))
		writePosts(cmd.OutOrStdout(), res.Imported, time.Local)
		return nil
	})
}
