package cli

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/spf13/cobra"
)

func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect or clear the saved cart",
	}

	cmd.AddCommand(newCartShowCommand(rootOpts))
	cmd.AddCommand(newCartClearCommand(rootOpts))

	return cmd
}

func newCartShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the saved cart of the profile",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, opts, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return printCart(cmd.OutOrStdout(), opts.Format, a.shop.CartView())
		},
	}
}

func newCartClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Empty the saved cart of the profile",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			out := cmd.OutOrStdout()
			a, err := newApp(ctx, opts, func(v view.CartView) {
				_ = printCart(out, opts.Format, v)
			})
			if err != nil {
				return err
			}
			defer a.Close()

			a.shop.ClearCart(ctx)
			return nil
		},
	}
}
