package dto

// RawOrderRow is one row of the marketplace spreadsheet export, as parsed by
// the upload handler. Quantity stays a string until the reconciler parses it;
// missing cells arrive as "".
type RawOrderRow struct {
	BuyerName   string
	OrderID     string
	Status      string
	ProductName string
	BuyerNote   string
	Quantity    string
}
