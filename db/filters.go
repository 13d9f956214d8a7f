package db

// Query parameter normalization shared by the JSON API, the HTML UI and the
// CSV export. Everything here falls back to a safe default instead of
// erroring: an unknown sort key means "sort by asset_tag", an unknown status
// means "no status filter".

const (
	DefaultSort  = "asset_tag"
	DefaultOrder = "asc"

	MinLimit = 1
	MaxLimit = 500
)

var allowedSorts = map[string]bool{
	"asset_tag":  true,
	"name":       true,
	"status":     true,
	"category":   true,
	"location":   true,
	"updated_at": true,
}

var validStatuses = map[string]bool{
	"available": true,
	"loaned":    true,
	"retired":   true,
}

var validOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

func NormalizeSort(sort string) string {
	if allowedSorts[sort] {
		return sort
	}
	return DefaultSort
}

func NormalizeOrder(order string) string {
	if validOrders[order] {
		return order
	}
	return DefaultOrder
}

// NormalizeStatus returns "" for anything outside the known set, which the
// query builder treats as "no filter".
func NormalizeStatus(status string) string {
	if validStatuses[status] {
		return status
	}
	return ""
}

func ValidStatus(status string) bool { return validStatuses[status] }

func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func ClampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
