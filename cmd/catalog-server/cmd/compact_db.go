package cmd

import (
	"context"
	"database/sql"
	"flag"
	"fmt"

	"go.uber.org/zap"
)

// ExecuteCompactDB compacts the SQLite database to reclaim space.
func ExecuteCompactDB(args []string) error {
	fs := flag.NewFlagSet("compact-db", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	analyze := fs.Bool("analyze", true, "Run ANALYZE after VACUUM")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := common.logger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	st, err := common.open(ctx, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	db := st.DB()

	logger.Info("compacting database", zap.String("path", common.dbPath))

	sizeBefore, err := databaseSize(ctx, db)
	if err != nil {
		return err
	}
	fmt.Printf("Database size before: %.2f MB\n", float64(sizeBefore)/(1024*1024))

	fmt.Println("\nRunning VACUUM (this may take a while)...")
	if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("VACUUM failed: %w", err)
	}

	sizeAfter, err := databaseSize(ctx, db)
	if err != nil {
		return err
	}
	saved := sizeBefore - sizeAfter
	percentSaved := 0.0
	if sizeBefore > 0 {
		percentSaved = float64(saved) / float64(sizeBefore) * 100
	}

	fmt.Printf("\nDatabase size after:  %.2f MB\n", float64(sizeAfter)/(1024*1024))
	fmt.Printf("Space reclaimed:      %.2f MB (%.1f%%)\n", float64(saved)/(1024*1024), percentSaved)

	logger.Info("VACUUM completed",
		zap.Int64("size_before", sizeBefore),
		zap.Int64("size_after", sizeAfter),
		zap.Int64("saved", saved),
	)

	if *analyze {
		fmt.Println("\nRunning ANALYZE to update query optimizer statistics...")
		if _, err := db.ExecContext(ctx, "ANALYZE"); err != nil {
			return fmt.Errorf("ANALYZE failed: %w", err)
		}
		fmt.Println("✓ ANALYZE completed")
	}

	count, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	fmt.Printf("\n  %-20s %d documents\n", "resources:", count)

	fmt.Println("\n✓ Database compaction completed successfully")
	return nil
}

// databaseSize returns page_count * page_size in bytes.
func databaseSize(ctx context.Context, db *sql.DB) (int64, error) {
	var pageCount, pageSize int64
	if err := db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	if err := db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, fmt.Errorf("failed to get page size: %w", err)
	}
	return pageCount * pageSize, nil
}
