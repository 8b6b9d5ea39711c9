package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"car-mzansi-connect/internal/marketplace/listings"

	"github.com/spf13/cobra"
)

// now is replaced in tests.
var now = time.Now

var listingsFlags struct {
	makes    []string
	fuel     []string
	verified bool
	minPrice int64
	maxPrice int64
	links    bool
}

var listingsCmd = &cobra.Command{
	Use:   "listings [query]",
	Short: "Search the dealership feed",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runListings,
}

func init() {
	f := listingsCmd.Flags()
	f.StringSliceVar(&listingsFlags.makes, "make", nil, "only these makes")
	f.StringSliceVar(&listingsFlags.fuel, "fuel", nil, "only these fuel types")
	f.BoolVar(&listingsFlags.verified, "verified", false, "only verified dealerships")
	f.Int64Var(&listingsFlags.minPrice, "min-price", -1, "minimum price in rand")
	f.Int64Var(&listingsFlags.maxPrice, "max-price", -1, "maximum price in rand")
	f.BoolVar(&listingsFlags.links, "whatsapp", false, "print a WhatsApp inquiry link per listing")
}

func filtersChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"make", "fuel", "verified", "min-price", "max-price"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func runListings(cmd *cobra.Command, args []string) error {
	var query string
	if len(args) == 1 {
		query = args[0]
	}

	var filters *listings.Filters
	if filtersChanged(cmd) {
		f := listings.DefaultFilters()
		f.Makes = listingsFlags.makes
		f.FuelTypes = listingsFlags.fuel
		f.Verified = listingsFlags.verified
		if listingsFlags.minPrice >= 0 {
			f.PriceRange.Min = listingsFlags.minPrice
		}
		if listingsFlags.maxPrice >= 0 {
			f.PriceRange.Max = listingsFlags.maxPrice
		}
		if err := f.Validate(); err != nil {
			return err
		}
		filters = &f
	}

	found, err := listings.NewSample(now()).Search(cmd.Context(), query, filters)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No listings match.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVEHICLE\tPRICE\tDEALERSHIP\tLOCATION")
	for _, l := range found {
		dealer := l.Dealership.Name
		if l.Dealership.Verified {
			dealer += " (verified)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Car.Title(), listings.FormatRand(l.Car.Price), dealer, l.Dealership.Location)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if listingsFlags.links {
		for _, l := range found {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", l.ID,
				listings.WhatsAppLink(l.Dealership.Phone, listings.InquiryMessage(l.Car, l.Dealership)))
		}
	}
	return nil
}
