package domain

var (
	MessageSuccessDownloadCart = "success download shopping list"
	MessageFailedDownloadCart  = "failed to download shopping list"
)

type (
	// CartLine is one raw ingredient line reachable from the user's
	// shopping cart, before aggregation.
	CartLine struct {
		IngredientID    string
		Name            string
		MeasurementUnit string
		Amount          int
	}

	// ShoppingListItem is one aggregated row of the shopping list.
	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		TotalAmount     int    `json:"total_amount"`
	}
)
