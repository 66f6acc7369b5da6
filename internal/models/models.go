// Package models provides domain models for the behavioral analytics engine.
package models

// AssetType represents the market an instrument trades in.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
)

// Action represents the side of a transaction.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Dimension represents one of the five behavioral score dimensions.
type Dimension string

const (
	DimensionRisk        Dimension = "risk"
	DimensionDiscipline  Dimension = "discipline"
	DimensionStrategy    Dimension = "strategy"
	DimensionPsychology  Dimension = "psychology"
	DimensionConsistency Dimension = "consistency"
)

// Dimensions lists all score dimensions in canonical order.
var Dimensions = []Dimension{
	DimensionRisk,
	DimensionDiscipline,
	DimensionStrategy,
	DimensionPsychology,
	DimensionConsistency,
}

// DimensionLabels maps dimensions to display names.
var DimensionLabels = map[Dimension]string{
	DimensionRisk:        "Risk Management",
	DimensionDiscipline:  "Discipline",
	DimensionStrategy:    "Strategy",
	DimensionPsychology:  "Psychology",
	DimensionConsistency: "Consistency",
}

// Transaction represents a single executed paper trade. Transactions are
// immutable and append-only; window calculations order by timestamp.
// Timestamps are kept as the raw strings the platform recorded so that
// unparseable history degrades to exclusion instead of an error.
type Transaction struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	AssetType AssetType `json:"assetType"`
	Action    Action    `json:"action"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Total     float64   `json:"total"`
	Timestamp string    `json:"timestamp"`
}

// Holding represents a current position. Quantity 0 removes the holding;
// CurrentPrice is 0 when no quote has been cached yet.
type Holding struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name,omitempty"`
	AssetType    AssetType `json:"assetType"`
	Quantity     float64   `json:"quantity"`
	AveragePrice float64   `json:"averagePrice"`
	CurrentPrice float64   `json:"currentPrice,omitempty"`
}

// MarketValue returns the holding's value at the current price, falling
// back to the average price when no quote is available.
func (h Holding) MarketValue() float64 {
	price := h.CurrentPrice
	if price == 0 {
		price = h.AveragePrice
	}
	return h.Quantity * price
}

// Checklist represents a pre-trade checklist attempt. One per trade,
// immutable once written.
type Checklist struct {
	ID             string `json:"id"`
	TransactionID  string `json:"transactionId,omitempty"`
	Symbol         string `json:"symbol"`
	CheckedTrend   bool   `json:"checkedTrend"`
	CheckedVolume  bool   `json:"checkedVolume"`
	CheckedNews    bool   `json:"checkedNews"`
	SetStopLoss    bool   `json:"setStopLoss"`
	SetTarget      bool   `json:"setTarget"`
	Skipped        bool   `json:"skipped"`
	CompletedCount int    `json:"completedCount"`
	CreatedAt      string `json:"createdAt"`
}

// FullyCompleted reports whether all five items were checked without skipping.
func (c Checklist) FullyCompleted() bool {
	return c.CompletedCount == ChecklistItemCount && !c.Skipped
}

// ChecklistItemCount is the number of items on the pre-trade checklist.
const ChecklistItemCount = 5
