package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"QuoteLens/internal/domain/models"

	"github.com/spf13/cobra"
)

var companyName string

var watchlistCmd = &cobra.Command{
	Use:     "watchlist",
	Aliases: []string{"wl"},
	Short:   "Manage watched symbols",
}

var watchlistLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List watched symbols",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printWatchlist(cmd.OutOrStdout(), toolkit.Watchlist.Load(cmd.Context()))
		return nil
	},
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add SYMBOL",
	Short: "Add a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := toolkit.Watchlist.Add(cmd.Context(), args[0], companyName)
		if err != nil {
			return err
		}
		printWatchlist(cmd.OutOrStdout(), w)
		return nil
	},
}

var watchlistRmCmd = &cobra.Command{
	Use:     "rm SYMBOL",
	Aliases: []string{"remove"},
	Short:   "Remove a symbol",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := toolkit.Watchlist.Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printWatchlist(cmd.OutOrStdout(), w)
		return nil
	},
}

var watchlistHasCmd = &cobra.Command{
	Use:   "has SYMBOL",
	Short: "Report whether a symbol is watched",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), toolkit.Watchlist.Contains(cmd.Context(), args[0]))
		return nil
	},
}

var watchlistRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch current prices for every watched symbol",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := toolkit.Refresher.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "updated: %v\nskipped: %v\nfailed:  %v\n", rep.Updated, rep.Skipped, rep.Failed)
		printWatchlist(out, toolkit.Watchlist.Load(cmd.Context()))
		return nil
	},
}

func init() {
	watchlistAddCmd.Flags().StringVarP(&companyName, "name", "n", "", "company name shown in listings")

	watchlistCmd.AddCommand(watchlistLsCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRmCmd)
	watchlistCmd.AddCommand(watchlistHasCmd)
	watchlistCmd.AddCommand(watchlistRefreshCmd)
}

func printWatchlist(w io.Writer, wl models.Watchlist) {
	if len(wl.Items) == 0 {
		fmt.Fprintln(w, "watchlist is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tCOMPANY\tPRICE\tCHANGE\tADDED")
	for _, it := range wl.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			it.Symbol, it.CompanyName, optPrice(it.LastPrice), optPrice(it.PriceChange), it.AddedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func optPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
