package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/arbilens/backend/internal/domain"
)

// ExportHeader is the column layout of exported research results
var ExportHeader = []string{
	"ASIN",
	"Title",
	"UPC",
	"List Price",
	"Acquisition Cost",
	"Buffer",
	"Platform Fee",
	"Referral Fee",
	"Total Cost",
	"Net Profit",
	"ROI %",
	"Profitable",
	"Store",
	"Store Price",
	"Store Link",
	"Status",
}

// WriteCSV writes one line per result, money rounded to cents
func WriteCSV(w io.Writer, results []domain.RowResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ExportHeader); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	for _, r := range results {
		if err := writer.Write(exportRecord(r)); err != nil {
			return fmt.Errorf("writing export row %s: %w", r.Row.Identifier, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func exportRecord(r domain.RowResult) []string {
	store, storePrice, storeLink := "", "", ""
	if r.Chosen != nil {
		store = r.Chosen.Store
		storePrice = r.Chosen.Price.StringFixed(2)
		storeLink = r.Chosen.Link
	}

	return []string{
		r.Row.Identifier,
		r.Row.Title,
		r.Row.Code,
		r.Row.ListPrice.StringFixed(2),
		r.Costs.AcquisitionCost.StringFixed(2),
		r.Costs.Buffer.StringFixed(2),
		r.Costs.PlatformFee.StringFixed(2),
		r.Costs.ReferralFee.StringFixed(2),
		r.Costs.TotalCost.StringFixed(2),
		r.Costs.NetProfit.StringFixed(2),
		r.Costs.ROI.StringFixed(2),
		strconv.FormatBool(r.Profitable),
		store,
		storePrice,
		storeLink,
		string(r.Status),
	}
}
