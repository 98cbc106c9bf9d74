package board

// Project groups an order collection into the four fixed status columns.
//
// Pure and total: every order lands in exactly one column, relative order
// within a column follows the source collection, and an order whose status
// somehow escaped normalization falls back to the first (Preparing) column
// rather than being dropped. Safe to call on every collection change.
func Project(orders []Order) []ColumnView {
	statuses := Statuses()

	index := make(map[Status]int, len(statuses))
	columns := make([]ColumnView, len(statuses))
	for i, status := range statuses {
		index[status] = i
		columns[i] = ColumnView{Status: status, Orders: []Order{}}
	}

	for _, order := range orders {
		i, ok := index[order.Status]
		if !ok {
			i = 0
		}
		columns[i].Orders = append(columns[i].Orders, order)
	}

	return columns
}
