// Command quotectl fetches quotes and manages the watchlist from the shell.
//
//	quotectl quote AAPL --period 3mo
//	quotectl watchlist add 7203 --name Toyota
//	quotectl watchlist refresh
package main

import (
	"os"

	"QuoteLens/cmd/quotectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
