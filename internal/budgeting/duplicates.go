package budgeting

import (
	"sort"

	"smartspend/internal/models"
)

// Key identifies the (user, category, month, year) slot a budget occupies.
type Key struct {
	UserID   string
	Category models.Category
	Month    int
	Year     int
}

// KeyOf returns the slot b occupies.
func KeyOf(b models.Budget) Key {
	return Key{UserID: b.UserID, Category: b.Category, Month: b.Month, Year: b.Year}
}

// Newer reports whether a should win over b when both occupy the same slot:
// the later UpdatedAt wins, and on a tie the greater (later issued) ID.
func Newer(a, b models.Budget) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}

// Duplicates returns the budgets to delete so that every slot keeps exactly
// one record, the newest by Newer. The result is sorted by ID.
func Duplicates(budgets []models.Budget) []models.Budget {
	keep := make(map[Key]models.Budget, len(budgets))
	for _, b := range budgets {
		k := KeyOf(b)
		if cur, ok := keep[k]; !ok || Newer(b, cur) {
			keep[k] = b
		}
	}

	var stale []models.Budget
	for _, b := range budgets {
		if keep[KeyOf(b)].ID != b.ID {
			stale = append(stale, b)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].ID < stale[j].ID })
	return stale
}
