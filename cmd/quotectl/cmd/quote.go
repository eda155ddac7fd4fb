package cmd

import (
	"fmt"
	"io"

	"QuoteLens/internal/domain/models"
	drepo "QuoteLens/internal/domain/repository"

	"github.com/spf13/cobra"
)

var quotePeriod string

var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL",
	Short: "Fetch a quote and print its analysis",
	Long: `Fetch daily closes for SYMBOL and print price statistics.

Four-digit codes are looked up on the Tokyo exchange. When the remote source
is unavailable a generated series is printed and marked as fallback.

Examples:
  quotectl quote AAPL
  quotectl quote 7203 --period 6mo`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quotePeriod, "period", "p", string(drepo.DefaultPeriod()), "one of 1mo, 3mo, 6mo, 1y, 2y")
}

func runQuote(cmd *cobra.Command, args []string) error {
	period := drepo.Period(quotePeriod)
	if !drepo.IsValidPeriod(period) {
		return fmt.Errorf("unsupported period %q", quotePeriod)
	}

	qa, err := toolkit.Analysis.QuoteWithAnalysis(cmd.Context(), args[0], period)
	if err != nil {
		return err
	}
	printQuote(cmd.OutOrStdout(), qa, period)
	return nil
}

func printQuote(w io.Writer, qa models.QuoteAnalysis, period drepo.Period) {
	q, a := qa.Quote, qa.Analysis
	source := "live"
	if q.IsFallback {
		source = "fallback"
	}

	fmt.Fprintf(w, "%s  %s  (%s, %s)\n", q.Symbol, q.CompanyName, period, source)
	fmt.Fprintf(w, "current   %10.2f\n", q.CurrentPrice)
	fmt.Fprintf(w, "previous  %10.2f\n", q.PreviousPrice)
	fmt.Fprintf(w, "high      %10.2f\n", a.Max)
	fmt.Fprintf(w, "low       %10.2f\n", a.Min)
	fmt.Fprintf(w, "average   %10.2f\n", a.Average)
	fmt.Fprintf(w, "return    %9.2f%%\n", a.TotalReturn)
	fmt.Fprintf(w, "volatility %8.2f%%\n", a.Volatility)
	fmt.Fprintf(w, "points    %10d\n", len(q.Prices))
}
