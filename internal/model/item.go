package model

// Item is a catalog product. Price and Stock are never negative once stored.
type Item struct {
	ID    int     `json:"-"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// Available reports whether qty units can be taken from stock.
func (i Item) Available(qty int) bool {
	return qty > 0 && i.Stock >= qty
}

// ItemSales pairs an item with the quantity sold across all orders.
type ItemSales struct {
	Item     Item
	Quantity int
}
