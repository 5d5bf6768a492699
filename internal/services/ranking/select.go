package ranking

import (
	"sort"

	"github.com/jwchung/apexrank/internal/models"
)

// SelectTopN returns the top n items by USD-normalized market value,
// descending. Pure function: the input slice is not modified. Ties keep their
// input order (stable sort); exact tie ordering is not a contract.
func SelectTopN(items []models.SnapshotItem, n int) []models.SnapshotItem {
	ranked := make([]models.SnapshotItem, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].USDValue() > ranked[j].USDValue()
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
