package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	ingestIncludes []string
	ingestExcludes []string
	ingestOwner    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest documents from a directory",
	Long: `Walk a directory and ingest every matching document into the configured
storage, chunking and embedding each one the same way an upload would.

Examples:
  docchat ingest ./docs                          # Ingest PDFs and text files
  docchat ingest ./docs --include "**/*.pdf"     # PDFs only
  docchat ingest ./docs --owner alice            # Ingest into alice's scope`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringSliceVar(&ingestIncludes, "include", []string{"**/*.pdf", "**/*.txt", "**/*.md"}, "glob patterns of files to ingest")
	ingestCmd.Flags().StringSliceVar(&ingestExcludes, "exclude", nil, "glob patterns of files to skip")
	ingestCmd.Flags().StringVar(&ingestOwner, "owner", "", "owner scope to ingest into")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root)
	}

	cfg := GetConfig()
	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set to ingest documents durably")
	}

	app, cleanup, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	files, err := collectFiles(root, ingestIncludes, ingestExcludes)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No matching files found.")
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	ctx := cmd.Context()
	ingested := 0
	var failures []string
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			bar.Add(1)
			continue
		}
		if _, err := app.ingestor.IngestFile(ctx, filepath.Base(path), "", data, ingestOwner); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			bar.Add(1)
			continue
		}
		ingested++
		bar.Add(1)
	}

	fmt.Printf("\nIngested %d of %d files\n", ingested, len(files))
	if len(failures) > 0 {
		fmt.Println("Failures:")
		for _, f := range failures {
			fmt.Printf("  - %s\n", f)
		}
	}
	return nil
}

// collectFiles walks root and returns the files matching the include
// patterns and none of the exclude patterns, relative to root.
func collectFiles(root string, includes, excludes []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !matchesAny(includes, rel) || matchesAny(excludes, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
