package shopping

import (
	"context"
	"strings"
	"testing"

	"foodgram/domain"
)

type fakeShoppingRepository struct {
	lines []domain.CartLine
}

func (r *fakeShoppingRepository) GetCartIngredientLines(_ context.Context, _ string) ([]domain.CartLine, error) {
	return r.lines, nil
}

func TestAggregateSumsAcrossRecipes(t *testing.T) {
	lines := []domain.CartLine{
		{IngredientID: "salt", Name: "Salt", MeasurementUnit: "g", Amount: 10},
		{IngredientID: "pepper", Name: "Pepper", MeasurementUnit: "g", Amount: 5},
		{IngredientID: "salt", Name: "Salt", MeasurementUnit: "g", Amount: 15},
	}

	items := Aggregate(lines)
	if len(items) != 2 {
		t.Fatalf("expected 2 aggregated items, got %d", len(items))
	}
	if items[0].Name != "Pepper" || items[0].TotalAmount != 5 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Name != "Salt" || items[1].TotalAmount != 25 {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
}

func TestAggregateEmptyCart(t *testing.T) {
	items := Aggregate(nil)
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %v", items)
	}
}

func TestAggregateKeepsDistinctIngredientsSeparate(t *testing.T) {
	lines := []domain.CartLine{
		{IngredientID: "a", Name: "Flour", MeasurementUnit: "g", Amount: 200},
		{IngredientID: "b", Name: "Milk", MeasurementUnit: "ml", Amount: 300},
	}

	items := Aggregate(lines)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].TotalAmount != 200 || items[1].TotalAmount != 300 {
		t.Fatalf("amounts must not merge across ingredients: %+v", items)
	}
}

func TestGetShoppingListAggregates(t *testing.T) {
	repo := &fakeShoppingRepository{lines: []domain.CartLine{
		{IngredientID: "salt", Name: "Salt", MeasurementUnit: "g", Amount: 10},
		{IngredientID: "salt", Name: "Salt", MeasurementUnit: "g", Amount: 15},
	}}
	svc := NewShoppingService(repo)

	items, err := svc.GetShoppingList(context.Background(), "user")
	if err != nil {
		t.Fatalf("get shopping list: %v", err)
	}
	if len(items) != 1 || items[0].TotalAmount != 25 {
		t.Fatalf("unexpected aggregation result: %+v", items)
	}
}

func TestRenderShoppingList(t *testing.T) {
	svc := NewShoppingService(&fakeShoppingRepository{})

	out := string(svc.RenderShoppingList([]domain.ShoppingListItem{
		{Name: "Pepper", MeasurementUnit: "g", TotalAmount: 5},
		{Name: "Salt", MeasurementUnit: "g", TotalAmount: 25},
	}))

	if !strings.Contains(out, "- Pepper (g): 5") {
		t.Fatalf("missing pepper line:\n%s", out)
	}
	if !strings.Contains(out, "- Salt (g): 25") {
		t.Fatalf("missing salt line:\n%s", out)
	}
	if strings.Index(out, "Pepper") > strings.Index(out, "Salt") {
		t.Fatalf("items must keep their order:\n%s", out)
	}
}
