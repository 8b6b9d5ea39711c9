package api

import (
	"net/http"
	"strconv"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/finance/calculator"
	"car-mzansi-connect/internal/marketplace/listings"
	"car-mzansi-connect/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type listingView struct {
	models.Listing
	Price        string `json:"priceLabel"`
	WhatsAppLink string `json:"whatsAppLink,omitempty"`
}

func newListingView(l models.Listing) listingView {
	v := listingView{Listing: l, Price: listings.FormatRand(l.Car.Price)}
	if l.Dealership.Phone != "" {
		v.WhatsAppLink = listings.WhatsAppLink(l.Dealership.Phone, listings.InquiryMessage(l.Car, l.Dealership))
	}
	return v
}

// searchListings accepts q plus optional make, fuelType, transmission and
// location lists, verified, and minPrice/maxPrice.
func (s *Server) searchListings(c *gin.Context) {
	var filters *listings.Filters
	if hasFilterParams(c) {
		f := listings.DefaultFilters()
		f.Makes = c.QueryArray("make")
		f.FuelTypes = c.QueryArray("fuelType")
		f.Transmissions = c.QueryArray("transmission")
		f.Locations = c.QueryArray("location")
		f.Verified = c.Query("verified") == "true"
		var err error
		if f.PriceRange.Min, err = queryInt(c, "minPrice", f.PriceRange.Min); err == nil {
			f.PriceRange.Max, err = queryInt(c, "maxPrice", f.PriceRange.Max)
		}
		if err == nil {
			err = f.Validate()
		}
		if err != nil {
			fail(c, http.StatusBadRequest, errors.NewInvalidFilterFormatError(err.Error()))
			return
		}
		filters = &f
	}

	found, err := s.catalogue.Search(c.Request.Context(), c.Query("q"), filters)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]listingView, 0, len(found))
	for _, l := range found {
		out = append(out, newListingView(l))
	}
	success(c, http.StatusOK, gin.H{"listings": out, "total": len(out)})
}

func hasFilterParams(c *gin.Context) bool {
	for _, key := range []string{"make", "fuelType", "transmission", "location", "verified", "minPrice", "maxPrice"} {
		if _, ok := c.GetQuery(key); ok {
			return true
		}
	}
	return false
}

func queryInt(c *gin.Context, key string, def int64) (int64, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *Server) getListing(c *gin.Context) {
	l, err := s.catalogue.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, http.StatusOK, newListingView(l))
}

type quoteRequest struct {
	ListingID  string           `json:"listingId"`
	Price      decimal.Decimal  `json:"price"`
	Deposit    decimal.Decimal  `json:"deposit"`
	AnnualRate *decimal.Decimal `json:"annualRate"`
	TermMonths int              `json:"termMonths"`
}

// quote prices a loan. A listingId supplies the price; annualRate defaults
// to the configured rate.
func (s *Server) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.NewInvalidRequestError(err.Error()))
		return
	}

	price := req.Price
	if req.ListingID != "" {
		l, err := s.catalogue.Get(c.Request.Context(), req.ListingID)
		if err != nil {
			s.writeError(c, err)
			return
		}
		price = decimal.NewFromInt(l.Car.Price)
	}
	rate := s.annualRate
	if req.AnnualRate != nil {
		rate = *req.AnnualRate
	}

	res, err := calculator.Calculate(calculator.Quote{
		Price:      price,
		Deposit:    req.Deposit,
		AnnualRate: rate,
		TermMonths: req.TermMonths,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, http.StatusOK, res)
}
