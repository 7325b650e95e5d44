package services

import (
	"sort"

	"epol-dashboard/internal/models"
)

// ClassifyStock places an item in exactly one stock bucket. Zero quantity is
// always out of stock, whatever the threshold.
func ClassifyStock(item models.InventoryItem) models.StockStatus {
	switch {
	case item.Quantity <= 0:
		return models.StockOut
	case item.Quantity <= item.Threshold:
		return models.StockLow
	default:
		return models.StockIn
	}
}

// StockAlerts returns out-of-stock then low-stock items, each sorted by name.
func StockAlerts(items []models.InventoryItem) []models.InventoryItem {
	var out []models.InventoryItem
	for _, it := range items {
		if ClassifyStock(it) != models.StockIn {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := ClassifyStock(out[i]), ClassifyStock(out[j])
		if si != sj {
			return si == models.StockOut
		}
		return out[i].Name < out[j].Name
	})
	return out
}
