package models

// PairedItem links an output item back to the input item it was produced from.
type PairedItem struct {
	Item int `json:"item"`
}

// Item is the unit of data flowing between nodes.
type Item struct {
	JSON       map[string]any `json:"json"`
	PairedItem *PairedItem    `json:"pairedItem,omitempty"`
}

// NewItem creates an item paired with the input at index.
func NewItem(index int, data map[string]any) Item {
	if data == nil {
		data = map[string]any{}
	}

	return Item{
		JSON:       data,
		PairedItem: &PairedItem{Item: index},
	}
}

// ItemsFromJSON wraps plain JSON objects as unpaired input items.
func ItemsFromJSON(objects []map[string]any) []Item {
	items := make([]Item, 0, len(objects))
	for _, obj := range objects {
		if obj == nil {
			obj = map[string]any{}
		}

		items = append(items, Item{JSON: obj})
	}

	return items
}

// IsFailure reports whether the item is a captured per-item failure.
func (i Item) IsFailure() bool {
	failed, _ := i.JSON["error"].(bool)

	return failed
}
