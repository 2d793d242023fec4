package pagination

// TrimPage implements the limit+1 probe: repositories fetch one row beyond
// the requested limit, and if that extra row came back there are more pages
// and the next cursor is built from the last retained row. OFFSET paging is
// deliberately avoided; it corrupts under concurrent inserts.
func TrimPage[T any](items []T, limit int, cursorOf func(T) Cursor) ([]T, *Cursor) {
	if len(items) <= limit {
		return items, nil
	}
	items = items[:limit]
	next := cursorOf(items[len(items)-1])
	return items, &next
}
