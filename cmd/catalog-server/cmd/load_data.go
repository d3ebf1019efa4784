package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sgci.io/catalog/internal/config"
	"sgci.io/catalog/internal/ingest"
	"sgci.io/catalog/pkg/catalog"
)

// ExecuteLoadData replaces the stored collection with the contents of a data
// directory, optionally watching it for changes. With -git-repo the directory
// is taken from a clone of that repository, and -watch polls it for commits.
func ExecuteLoadData(args []string) error {
	fs := flag.NewFlagSet("load-data", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	dir := fs.String("dir", config.EnvOr("DATA_DIR", "./data"), "Directory holding sgciResources data files")
	strict := fs.Bool("strict", false, "Reject the load if any document does not map to a resource")
	watch := fs.Bool("watch", false, "Keep running and reload when data files change")
	debounce := fs.Duration("debounce", ingest.DefaultDebounce, "Quiet period before a watched change is reloaded")
	dryRun := fs.Bool("dry-run", false, "Validate the data files and list matching documents without writing")
	var gitOpts ingest.GitOptions
	fs.StringVar(&gitOpts.URL, "git-repo", config.EnvOr("GIT_REPO", ""), "Clone data files from this git repository instead of -dir")
	fs.StringVar(&gitOpts.Branch, "git-branch", "", "Branch to track (default: remote HEAD)")
	fs.StringVar(&gitOpts.Dir, "git-dir", config.EnvOr("GIT_DIR", "./catalog-data"), "Local clone directory, replaced on start")
	fs.StringVar(&gitOpts.DataPath, "git-data-path", ingest.DefaultGitDataPath, "Data directory inside the repository")
	poll := fs.Duration("poll", ingest.DefaultPollInterval, "With -git-repo -watch, how often to pull")
	var preview catalog.Query
	fs.StringVar(&preview.ID, "id", "", "With -dry-run, only list documents with this id")
	fs.StringVar(&preview.Name, "name", "", "With -dry-run, only list documents with this name")
	fs.StringVar(&preview.ResourceType, "type", "", "With -dry-run, only list documents with this resourceType")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := common.logger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	if *dryRun {
		return dryRunLoad(ingest.NewLoader(nil, logger, *strict), *dir, preview)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := common.open(ctx, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	loader := ingest.NewLoader(st, logger, *strict)

	if gitOpts.URL != "" {
		return loadFromGit(ctx, loader, gitOpts, *watch, *poll)
	}

	start := time.Now()
	report, err := loader.Load(ctx, *dir)
	printReport(report)
	if err != nil {
		return err
	}
	fmt.Printf("\n✓ Loaded %d documents from %d files in %s\n",
		report.Documents, len(report.Files), time.Since(start).Round(time.Millisecond))

	if !*watch {
		return nil
	}

	logger.Info("watching for changes, press Ctrl+C to stop", zap.String("dir", *dir))
	return loader.Watch(ctx, *dir, *debounce)
}

func loadFromGit(ctx context.Context, loader *ingest.Loader, opts ingest.GitOptions, watch bool, poll time.Duration) error {
	src, err := ingest.NewGitSource(loader, opts)
	if err != nil {
		return err
	}
	if watch {
		fmt.Printf("Polling %s every %s, press Ctrl+C to stop\n", opts.URL, poll)
		return src.Run(ctx, poll)
	}

	if err := src.Clone(ctx); err != nil {
		return err
	}
	if _, err := src.Sync(ctx); err != nil {
		return err
	}
	fmt.Printf("✓ Loaded %s from %s\n", src.DataDir(), opts.URL)
	return nil
}

func dryRunLoad(loader *ingest.Loader, dir string, preview catalog.Query) error {
	report, err := loader.DryRun(dir, preview)
	printReport(report)
	if err != nil {
		return err
	}

	fmt.Printf("\nDry run: %d documents in %d files, %d invalid, %d matching\n",
		report.Documents, len(report.Files), len(report.Invalid), len(report.Matched))
	for _, doc := range report.Matched {
		fmt.Printf("  %-30v %-20v %v\n", doc.ID(), doc["name"], doc["resourceType"])
	}
	if len(report.Invalid) > 0 {
		return fmt.Errorf("%w: %d documents failed validation", ingest.ErrInvalidData, len(report.Invalid))
	}
	return nil
}

func printReport(report *ingest.Report) {
	if report == nil {
		return
	}
	for _, f := range report.Files {
		fmt.Printf("  read %s\n", f)
	}
	if len(report.Invalid) == 0 {
		return
	}
	fmt.Printf("\n%d documents do not map to a resource:\n", len(report.Invalid))
	for _, recErr := range report.Invalid {
		fmt.Printf("  ✗ %v\n", recErr)
	}
}
