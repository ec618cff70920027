package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fjod/go_cart/storefront/internal/view"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that are not ExitErrors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCatalog(w io.Writer, format string, v view.CatalogView) error {
	if format == "json" {
		return writeJSON(w, v)
	}
	if !v.Available {
		_, err := fmt.Fprintln(w, "Catalog unavailable.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE\tSTOCK\tRATING\tIN CART")
	for _, p := range v.Products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.1f\t%d\n", p.ID, p.Title, p.Category, p.Price, p.Stock, p.Rating, p.InCart)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Page %d of %d (%d products, %s - %s)\n", v.Page, max(v.TotalPages, 1), v.TotalItems, v.MinPrice, v.MaxPrice); err != nil {
		return err
	}
	// Upstream was down, say how old the snapshot is
	if v.Stale && v.FetchedAt != nil {
		_, err := fmt.Fprintf(w, "Offline: showing catalog saved %s\n", v.FetchedAt.Local().Format(time.DateTime))
		return err
	}
	return nil
}

func printCart(w io.Writer, format string, v view.CartView) error {
	if format == "json" {
		return writeJSON(w, v)
	}
	if v.Empty {
		_, err := fmt.Fprintln(w, v.Placeholder)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tQTY\tTOTAL\tSTATUS")
	for _, l := range v.Lines {
		status := "open"
		if l.CheckedOut {
			status = "checked out"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", l.ProductID, l.Title, l.Price, l.Quantity, l.Total, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s\nItems: %d  Total: %s\n", strings.Repeat("-", 24), v.ItemCount, v.GrandTotal)
	return err
}
