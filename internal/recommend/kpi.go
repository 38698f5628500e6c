package recommend

import "fmt"

// KPI thresholds. Breaching one triggers its recommendation.
const (
	MinInventoryTurnover = 4.0  // turns per period
	MinFulfillmentRate   = 95.0 // percent
	MaxVelocity          = 7.0  // average lead time per order
)

// KPIInput is the realtime operational variant of the analysis input.
type KPIInput struct {
	CostOfGoods      float64 `json:"cost_of_goods"`
	AverageInventory float64 `json:"average_inventory"`
	FulfilledOrders  float64 `json:"fulfilled_orders"`
	TotalOrders      float64 `json:"total_orders"`
	TotalLeadTime    float64 `json:"total_lead_time"`
}

// KPISnapshot holds the derived operational ratios.
type KPISnapshot struct {
	InventoryTurnover float64 `json:"inventory_turnover"`
	FulfillmentRate   float64 `json:"fulfillment_rate"`
	Velocity          float64 `json:"velocity"`
}

// ComputeKPIs derives the realtime ratios. Zero denominators yield 0 rather
// than dividing.
func ComputeKPIs(in KPIInput) KPISnapshot {
	var snap KPISnapshot
	if in.AverageInventory != 0 {
		snap.InventoryTurnover = in.CostOfGoods / in.AverageInventory
	}
	if in.TotalOrders != 0 {
		snap.FulfillmentRate = 100 * in.FulfilledOrders / in.TotalOrders
		snap.Velocity = in.TotalLeadTime / in.TotalOrders
	}
	return snap
}

// ForKPIs flags ratios that breach their thresholds. Unlike the tabular
// path this variant has no general fallback: healthy KPIs yield an empty
// list.
func ForKPIs(snap KPISnapshot) []Recommendation {
	var recs []Recommendation

	if snap.InventoryTurnover < MinInventoryTurnover {
		recs = append(recs, Recommendation{
			Type:        TypeInventoryTurnover,
			Description: fmt.Sprintf("Inventory turnover is %.2f, below the target of %.0f; reduce stock levels or improve sales velocity.", snap.InventoryTurnover, MinInventoryTurnover),
			Priority:    PriorityMedium,
		})
	}

	if snap.FulfillmentRate < MinFulfillmentRate {
		recs = append(recs, Recommendation{
			Type:        TypeFulfillment,
			Description: fmt.Sprintf("Order fulfillment rate is %.1f%%, below the target of %.0f%%; investigate stockouts and picking capacity.", snap.FulfillmentRate, MinFulfillmentRate),
			Priority:    PriorityHigh,
		})
	}

	if snap.Velocity > MaxVelocity {
		recs = append(recs, Recommendation{
			Type:        TypeVelocity,
			Description: fmt.Sprintf("Average lead time per order is %.1f, above the target of %.0f; streamline order processing and logistics.", snap.Velocity, MaxVelocity),
			Priority:    PriorityHigh,
		})
	}

	return recs
}
