package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostBreakdown is derived from a catalog row and the chosen acquisition cost
type CostBreakdown struct {
	AcquisitionCost decimal.Decimal `json:"acquisitionCost"`
	Buffer          decimal.Decimal `json:"buffer"`
	PlatformFee     decimal.Decimal `json:"platformFee"`
	ReferralFee     decimal.Decimal `json:"referralFee"`
	TotalCost       decimal.Decimal `json:"totalCost"`
	NetProfit       decimal.Decimal `json:"netProfit"`
	ROI             decimal.Decimal `json:"roi"` // percent
}

// Profitable is true only for strictly positive profit
func (c CostBreakdown) Profitable() bool {
	return c.NetProfit.IsPositive()
}

// RowResult is the per-row outcome handed to the UI and the exporter
type RowResult struct {
	Row        CatalogRow    `json:"row"`
	Offers     OfferSet      `json:"offers"`
	Selection  Selection     `json:"selection"`
	Chosen     *Offer        `json:"chosen,omitempty"`
	Costs      CostBreakdown `json:"costs"`
	Profitable bool          `json:"profitable"`
	Status     FetchStatus   `json:"status"`
	Message    string        `json:"message,omitempty"`
}

// BatchStatus is the terminal state of a research batch
type BatchStatus string

const (
	BatchRunning   BatchStatus = "running"
	BatchCompleted BatchStatus = "completed"
	BatchCancelled BatchStatus = "cancelled"
)

// Summary is emitted once a batch has visited every row (or was cancelled)
type Summary struct {
	SessionID  string        `json:"sessionId"`
	Status     BatchStatus   `json:"status"`
	Total      int           `json:"total"`
	Processed  int           `json:"processed"`
	CacheHits  int           `json:"cacheHits"`
	Fetched    int           `json:"fetched"`
	Failures   int           `json:"failures"`
	Profitable int           `json:"profitable"`
	Elapsed    time.Duration `json:"elapsed"`
	Message    string        `json:"message"`
}

// Progress is the (index, total) position of a running batch, 1-based
type Progress struct {
	Index int `json:"index"`
	Total int `json:"total"`
}
