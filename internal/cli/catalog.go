package cli

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type CatalogOptions struct {
	*RootOptions
	Search   string
	Category string
	Min      string
	Max      string
	Page     int
	PerPage  int
}

func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print one page of the catalog",
		Long: `Fetch the catalog and print one page of it after search and filters.

Example:
  storefront catalog --search lamp
  storefront catalog --category furniture --max 100 --page 2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runCatalog(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "case-insensitive title/description search")
	cmd.Flags().StringVar(&opts.Category, "category", "", "exact category")
	cmd.Flags().StringVar(&opts.Min, "min", "", "minimum price")
	cmd.Flags().StringVar(&opts.Max, "max", "", "maximum price")
	cmd.Flags().IntVarP(&opts.Page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 0, "items per page (default ITEMS_PER_PAGE)")

	return cmd
}

func (o *CatalogOptions) criteria() (domain.FilterCriteria, error) {
	c := domain.FilterCriteria{SearchTerm: o.Search, Category: o.Category}
	if o.Min != "" {
		d, err := decimal.NewFromString(o.Min)
		if err != nil {
			return c, fmt.Errorf("invalid --min %q: %w", o.Min, err)
		}
		c.MinPrice = d
	}
	if o.Max != "" {
		d, err := decimal.NewFromString(o.Max)
		if err != nil {
			return c, fmt.Errorf("invalid --max %q: %w", o.Max, err)
		}
		c.MaxPrice = &d
	}
	return c, nil
}

func runCatalog(ctx context.Context, cmd *cobra.Command, opts *CatalogOptions) error {
	criteria, err := opts.criteria()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

	a, err := newApp(ctx, opts.RootOptions, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.PerPage != 0 {
		if err := a.shop.SetItemsPerPage(opts.PerPage); err != nil {
			return WrapExitError(ExitCommandError, "invalid --per-page", err)
		}
	}
	if err := a.shop.Refresh(ctx); err != nil {
		return WrapExitError(ExitFailure, "catalog unavailable", err)
	}
	a.shop.SetCriteria(criteria)
	a.shop.GoToPage(opts.Page)

	return printCatalog(cmd.OutOrStdout(), opts.Format, a.shop.CatalogView())
}
