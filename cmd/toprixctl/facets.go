package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List merged categories with product counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFacets(cmd, domain.FieldCategory)
	},
}

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List merged brands with product counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFacets(cmd, domain.FieldBrand)
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(brandsCmd)
}

func runFacets(cmd *cobra.Command, field string) error {
	service, closeFn, err := openCatalog(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	var facets []domain.Facet
	if field == domain.FieldCategory {
		facets, err = service.ListCategories(cmd.Context())
	} else {
		facets, err = service.ListBrands(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("listing %s facets failed: %w", field, err)
	}

	if output == "json" {
		return writeJSON(cmd.OutOrStdout(), facets)
	}
	writeFacetTable(cmd.OutOrStdout(), facets)
	return nil
}

func writeFacetTable(out io.Writer, facets []domain.Facet) {
	if len(facets) == 0 {
		fmt.Fprintln(out, "No entries found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tPRODUCTS")
	fmt.Fprintln(w, "----\t----\t--------")
	for _, f := range facets {
		fmt.Fprintf(w, "%s\t%s\t%d\n", f.Slug, f.Name, f.ProductCount)
	}
	w.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
