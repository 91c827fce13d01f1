package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feed"
	"github.com/orgball2608/contentflow/pkg/formatter"
	"github.com/spf13/cobra"
)

const previewLength = 48

var (
	listPlatform string
	listStatus   string
	exportDir    string
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List, export and inspect posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	Long: `List posts, newest first.

Examples:
  contentctl posts list
  contentctl posts list --platform linkedin --status draft
  contentctl posts list --platform doc`,
	Args: cobra.NoArgs,
	RunE: runPostsList,
}

var postsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a post body as markdown",
	Long: `Export a post body as markdown. Without --dir the markdown is printed;
with --dir it is written to a file named after the first words of the post.`,
	Args: cobra.ExactArgs(1),
	RunE: runPostsExport,
}

var postsTreeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Show the posts derived from the same source",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsTree,
}

func init() {
	postsListCmd.Flags().StringVar(&listPlatform, "platform", "", "platform, or doc for generic docs")
	postsListCmd.Flags().StringVar(&listStatus, "status", "", "idea, draft, ready or published")
	postsExportCmd.Flags().StringVar(&exportDir, "dir", "", "write the markdown file into this directory")

	postsCmd.AddCommand(postsListCmd, postsExportCmd, postsTreeCmd)
}

func listFilter(platform, status string) (feed.Filter, error) {
	var f feed.Filter
	if platform != "" {
		p, err := domain.ParsePlatform(platform)
		if err != nil {
			return f, err
		}
		f.Platform = p
		f.Docs = p.IsDoc()
	}
	if status != "" {
		st, err := domain.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	return f, nil
}

func runPostsList(cmd *cobra.Command, _ []string) error {
	f, err := listFilter(listPlatform, listStatus)
	if err != nil {
		return err
	}
	return withDeps(cmd.Context(), func(d deps) error {
		posts, err := d.Store.List(cmd.Context(), f)
		if err != nil {
			return err
		}
		writePosts(cmd.OutOrStdout(), posts, time.Local)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s posts\n", formatter.FormatNumber(len(posts)))
		return nil
	})
}

func writePosts(out io.Writer, posts []domain.Post, loc *time.Location) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLATFORM\tSTATUS\tSCHEDULED\tPIN\tPREVIEW")
	for _, p := range posts {
		scheduled := "-"
		if p.IsScheduled() {
			scheduled = p.ScheduledTime(loc).Format("Mon Jan 2 15:04")
		}
		pin := ""
		if p.Pinned {
			pin = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Platform.Label(), p.Status, scheduled, pin,
			formatter.Preview(p.Title, p.Body, previewLength, "Untitled"))
	}
	tw.Flush()
}

func runPostsExport(cmd *cobra.Command, args []string) error {
	return withDeps(cmd.Context(), func(d deps) error {
		post, err := d.Store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		md, err := formatter.HTMLToMarkdown(post.Body)
		if err != nil {
			return err
		}
		md = strings.TrimSpace(md) + "\n"

		if exportDir == "" {
			_, err = io.WriteString(cmd.OutOrStdout(), md)
			return err
		}
		path := filepath.Join(exportDir, formatter.MarkdownFilename(post.Body, post.ID))
		if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	})
}

func runPostsTree(cmd *cobra.Command, args []string) error {
	return withDeps(cmd.Context(), func(d deps) error {
		root, err := d.Store.Tree(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		writeTree(cmd.OutOrStdout(), root, args[0], 0)
		return nil
	})
}

// writeTree prints one line per node, marking the post the tree was asked for.
func writeTree(out io.Writer, node *feed.Node, current string, depth int) {
	if node == nil {
		return
	}
	marker := ""
	if node.Post.ID == current {
		marker = "  <"
	}
	fmt.Fprintf(out, "%s%s [%s] %s%s\n",
		strings.Repeat("  ", depth),
		node.Post.Platform.Label(),
		node.Post.Status,
		formatter.Preview(node.Post.Title, node.Post.Body, previewLength, node.Post.ID),
		marker)
	for _, child := range node.Children {
		writeTree(out, child, current, depth+1)
	}
}
