package shopping

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"foodgram/domain"
)

type (
	ShoppingService interface {
		GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
		RenderShoppingList(items []domain.ShoppingListItem) []byte
	}

	shoppingService struct {
		shoppingRepository ShoppingRepository
	}
)

func NewShoppingService(shoppingRepository ShoppingRepository) ShoppingService {
	return &shoppingService{shoppingRepository: shoppingRepository}
}

func (s *shoppingService) GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	lines, err := s.shoppingRepository.GetCartIngredientLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Aggregate(lines), nil
}

// Aggregate merges ingredient lines from many recipes into one total
// per ingredient. An ingredient has a single fixed measurement unit, so
// grouping by id and by (name, unit) are equivalent. The result is
// ordered by name for reproducible output; an empty cart yields an
// empty list.
func Aggregate(lines []domain.CartLine) []domain.ShoppingListItem {
	totals := make(map[string]*domain.ShoppingListItem)
	for _, line := range lines {
		if item, ok := totals[line.IngredientID]; ok {
			item.TotalAmount += line.Amount
			continue
		}
		totals[line.IngredientID] = &domain.ShoppingListItem{
			Name:            line.Name,
			MeasurementUnit: line.MeasurementUnit,
			TotalAmount:     line.Amount,
		}
	}

	items := make([]domain.ShoppingListItem, 0, len(totals))
	for _, item := range totals {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items
}

// RenderShoppingList formats the aggregated items as a plain text
// document for download.
func (s *shoppingService) RenderShoppingList(items []domain.ShoppingListItem) []byte {
	var b strings.Builder
	b.WriteString("Shopping list\n")
	b.WriteString("=============\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (%s): %d\n", item.Name, item.MeasurementUnit, item.TotalAmount)
	}
	return []byte(b.String())
}
