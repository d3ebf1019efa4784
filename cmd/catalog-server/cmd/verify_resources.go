package cmd

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"sgci.io/catalog/internal/util"
	"sgci.io/catalog/models"
	"sgci.io/catalog/pkg/catalog"
)

// ExecuteVerifyResources decodes every stored document and reports the ones
// that fail the resource schema or type resolution.
func ExecuteVerifyResources(args []string) error {
	fs := flag.NewFlagSet("verify-resources", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	resourceType := fs.String("type", "", "Only verify documents with this resourceType")

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

	records, err := st.Find(ctx, catalog.BuildFilter(catalog.Query{ResourceType: *resourceType}))
	if err != nil {
		return fmt.Errorf("failed to read documents: %w", err)
	}

	logger.Info("verifying resources", zap.Int("documents", len(records)))

	variants := make(map[models.Variant]int)
	var failures []*models.RecordError
	warnings := 0
	for i, rec := range records {
		res, err := rec.Decode()
		if err != nil {
			failures = append(failures, &models.RecordError{Index: i, ID: rec.ID(), Err: err})
			continue
		}
		variants[res.Resource.Variant]++
		if common.verbose {
			fmt.Printf("  ✓ %-30s %-8s %s\n", res.ID, res.ResourceType, res.Resource.Variant)
		}
		for _, w := range util.CheckEndpoints(res) {
			warnings++
			fmt.Printf("  ! %-30s %s\n", res.ID, w)
		}
	}

	fmt.Println("\nVerification Summary:")
	fmt.Println("=====================================")
	fmt.Printf("  %-20s %d\n", "documents:", len(records))
	fmt.Printf("  %-20s %d\n", "storage:", variants[models.VariantStorage])
	fmt.Printf("  %-20s %d\n", "compute:", variants[models.VariantCompute])
	fmt.Printf("  %-20s %d\n", "invalid:", len(failures))
	fmt.Printf("  %-20s %d\n", "endpoint warnings:", warnings)

	if len(failures) == 0 {
		fmt.Println("\n✓ All resources are valid")
		return nil
	}

	fmt.Println("\nInvalid documents:")
	for _, f := range failures {
		fmt.Printf("  ✗ %v\n", f)
	}
	return fmt.Errorf("%d of %d documents failed verification", len(failures), len(records))
}
