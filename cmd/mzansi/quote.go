package main

import (
	"fmt"

	"car-mzansi-connect/internal/finance/calculator"
	"car-mzansi-connect/internal/marketplace/listings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var quoteFlags struct {
	price     string
	deposit   string
	rate      string
	term      int
	listingID string
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a vehicle finance quote",
	Example: `  mzansi quote --price 599000 --deposit 50000 --term 60
  mzansi quote --listing 1 --deposit 100000 --rate 12.5`,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteFlags.price, "price", "", "vehicle price in rand")
	quoteCmd.Flags().StringVar(&quoteFlags.deposit, "deposit", "0", "deposit in rand")
	quoteCmd.Flags().StringVar(&quoteFlags.rate, "rate", "11.75", "annual interest rate in percent")
	quoteCmd.Flags().IntVar(&quoteFlags.term, "term", 60, "term in months")
	quoteCmd.Flags().StringVar(&quoteFlags.listingID, "listing", "", "take the price from a sample listing")
}

func runQuote(cmd *cobra.Command, _ []string) error {
	var price decimal.Decimal
	switch {
	case quoteFlags.listingID != "":
		l, err := listings.NewSample(now()).Get(cmd.Context(), quoteFlags.listingID)
		if err != nil {
			return fmt.Errorf("listing %s: %w", quoteFlags.listingID, err)
		}
		price = decimal.NewFromInt(l.Car.Price)
		fmt.Fprintf(cmd.OutOrStdout(), "%s from %s\n", l.Car.Title(), l.Dealership.Name)
	case quoteFlags.price != "":
		var err error
		if price, err = decimal.NewFromString(quoteFlags.price); err != nil {
			return fmt.Errorf("--price: %w", err)
		}
	default:
		return fmt.Errorf("one of --price or --listing is required")
	}

	deposit, err := decimal.NewFromString(quoteFlags.deposit)
	if err != nil {
		return fmt.Errorf("--deposit: %w", err)
	}
	rate, err := decimal.NewFromString(quoteFlags.rate)
	if err != nil {
		return fmt.Errorf("--rate: %w", err)
	}

	res, err := calculator.Calculate(calculator.Quote{
		Price:      price,
		Deposit:    deposit,
		AnnualRate: rate,
		TermMonths: quoteFlags.term,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Amount financed:    R %s\n", res.Principal.StringFixed(2))
	fmt.Fprintf(out, "Monthly instalment: R %s\n", res.MonthlyInstalment.StringFixed(2))
	fmt.Fprintf(out, "Total repayable:    R %s\n", res.TotalRepayable.StringFixed(2))
	fmt.Fprintf(out, "Total interest:     R %s\n", res.TotalInterest.StringFixed(2))
	fmt.Fprintf(out, "Term:               %d months at %s%%\n", res.TermMonths, res.AnnualRatePercent.String())
	return nil
}
