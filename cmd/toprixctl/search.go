package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Toprix-comparateur/toprix-backend/internal/domain"
)

var (
	searchCategory string
	searchBrand    string
	searchPage     int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search products across every store",
	Long: `Run a federated search exactly as GET /api/v1/produits does: the query is
cleaned, classified as a reference, free text or filter, fanned out to every
store, filtered, deduplicated by reference and paginated.`,
	Example: `  toprixctl search "iphone 13 pro"
  toprixctl search 6S6V2EA --output json
  toprixctl search --category pc-portable --brand hp --page 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Category substring filter")
	searchCmd.Flags().StringVar(&searchBrand, "brand", "", "Brand substring filter")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Page number")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) == 1 {
		query = args[0]
	}

	service, closeFn, err := openCatalog(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := service.SearchProducts(cmd.Context(), domain.SearchRequest{
		Query:    query,
		Category: searchCategory,
		Brand:    searchBrand,
		Page:     searchPage,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if output == "json" {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	writeProductTable(cmd.OutOrStdout(), result)
	return nil
}

func writeProductTable(out io.Writer, result domain.PagedResult) {
	if len(result.Data) == 0 {
		fmt.Fprintln(out, "No products found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "STORE\tPRICE\tREFERENCE\tSTOCK\tNAME")
	fmt.Fprintln(w, "-----\t-----\t---------\t-----\t----")

	for _, p := range result.Data {
		stock := "no"
		if p.InStock {
			stock = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Store, formatPrice(p.MinPrice), dash(p.Reference), stock, truncate(p.Name, 60))
	}
	w.Flush()

	fmt.Fprintf(out, "\nPage %d/%d, %d products\n", result.Meta.Page, result.Meta.TotalPages, result.Meta.TotalItems)
}

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f DT", *p)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
