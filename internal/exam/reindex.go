package exam

import "examgen/internal/models"

// Reindex returns a copy of the worksheet whose items are numbered 1..N in
// their existing order. The input is left untouched, and reindexing an
// already-reindexed worksheet changes nothing.
func Reindex(ws models.Worksheet) models.Worksheet {
	items := make([]models.ExamItem, len(ws.Items))
	copy(items, ws.Items)
	for i := range items {
		items[i].ID = i + 1
	}

	out := ws
	out.Items = items
	return out
}
