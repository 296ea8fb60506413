package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/glebarez/sqlite"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"polycopy/model"
	"polycopy/storage"
)

func main() {
	app := &cli.App{
		Name:     "polycopy",
		HelpName: "polycopy",
		Usage:    "Utilities for the copy trading ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "eg. ./data/copytrading.db",
				Value:   "./data/copytrading.db",
			},
		},
		Commands: []*cli.Command{
			{
				Name:     "trades",
				HelpName: "trades",
				Usage:    "List recorded copy trades",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "trader",
						Aliases:  []string{"t"},
						Usage:    "eg. 0xabc... (filter by followed trader)",
						Required: false,
					},
					&cli.StringFlag{
						Name:     "status",
						Aliases:  []string{"s"},
						Usage:    "eg. PENDING, FILLED or FAILED",
						Required: false,
					},
				},
				Action: func(c *cli.Context) error {
					st, err := storage.FromSQL(sqlite.Open(c.String("database")))
					if err != nil {
						return err
					}

					var filters []storage.TradeFilter
					if trader := c.String("trader"); trader != "" {
						filters = append(filters, storage.WithTrader(trader))
					}
					if status := c.String("status"); status != "" {
						filters = append(filters, storage.WithStatusIn(model.CopyTradeStatus(status)))
					}

					trades, err := st.CopyTrades(filters...)
					if err != nil {
						return err
					}

					for _, trade := range trades {
						fmt.Println(trade)
					}
					fmt.Printf("total: %d\n", len(trades))
					return nil
				},
			},
			{
				Name:     "report",
				HelpName: "report",
				Usage:    "Per-trader copy summary",
				Action: func(c *cli.Context) error {
					st, err := storage.FromSQL(sqlite.Open(c.String("database")))
					if err != nil {
						return err
					}

					trades, err := st.CopyTrades()
					if err != nil {
						return err
					}

					table := tablewriter.NewWriter(os.Stdout)
					table.SetHeader([]string{"Trader", "Trades", "Filled", "Volume"})
					table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

					var totalVolume float64
					byTrader := lo.GroupBy(trades, func(t *model.CopyTrade) string { return t.OriginalTrader })
					for trader, entries := range byTrader {
						filled := lo.CountBy(entries, func(t *model.CopyTrade) bool {
							return t.Status == model.CopyTradeStatusFilled
						})
						volume := lo.SumBy(entries, func(t *model.CopyTrade) float64 { return t.CopyAmount })
						table.Append([]string{
							trader,
							strconv.Itoa(len(entries)),
							strconv.Itoa(filled),
							fmt.Sprintf("%.2f", volume),
						})
						totalVolume += volume
					}
					table.SetFooter([]string{
						"TOTAL",
						strconv.Itoa(len(trades)),
						"",
						fmt.Sprintf("%.2f", totalVolume),
					})
					table.Render()
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
