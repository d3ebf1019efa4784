package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sgci.io/catalog/models"
	"sgci.io/catalog/sdk"
)

// Output formats accepted by -o.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type resourcesOptions struct {
	query  sdk.ResourceQuery
	output string
}

func newResourcesCmd(global *globalOptions) *cobra.Command {
	opts := &resourcesOptions{}

	cmd := &cobra.Command{
		Use:     "resources",
		Aliases: []string{"resource", "res"},
		Short:   "List catalog resources",
		Long: `List the resources matching every given filter. Without filters the
whole catalog is listed.`,
		Example: `  catalogctl resources --type STORAGE
  catalogctl resources --id r1 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputTable, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", opts.output)
			}

			client, err := global.client()
			if err != nil {
				return err
			}

			resources, err := client.ListResources(cmd.Context(), opts.query)
			if err != nil {
				return err
			}

			return writeResources(cmd.OutOrStdout(), opts.output, resources)
		},
	}

	cmd.Flags().StringVar(&opts.query.ID, "id", "", "match resource ID")
	cmd.Flags().StringVar(&opts.query.Name, "name", "", "match resource name")
	cmd.Flags().StringVar(&opts.query.ResourceType, "type", "", "match resource type (e.g. STORAGE, COMPUTE)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table, json or yaml")

	return cmd
}

func writeResources(w io.Writer, format string, resources []models.Resource) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resources)
	case outputYAML:
		// Route through JSON so the payload union renders only its variant.
		raw, err := json.Marshal(resources)
		if err != nil {
			return err
		}
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeTable(w, resources)
	}
}

func writeTable(w io.Writer, resources []models.Resource) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tVARIANT\tKIND\tHOSTS")
	for _, r := range resources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.ResourceType, r.Resource.Variant, kind(r.Resource), hosts(r.Hosts))
	}
	return tw.Flush()
}

// kind returns the variant marker value, e.g. the storage or scheduler type.
func kind(p models.ResourcePayload) string {
	switch {
	case p.Storage != nil:
		return p.Storage.StorageType
	case p.Compute != nil:
		return p.Compute.SchedulerType
	}
	return "-"
}

func hosts(hs []models.Host) string {
	if len(hs) == 0 {
		return "-"
	}
	names := make([]string, 0, len(hs))
	for _, h := range hs {
		if h.Hostname != "" {
			names = append(names, h.Hostname)
		} else {
			names = append(names, h.IP)
		}
	}
	return strings.Join(names, ",")
}
