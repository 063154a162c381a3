package shopping

import (
	"context"

	"foodgram/domain"
	"foodgram/entities"

	"gorm.io/gorm"
)

type (
	ShoppingRepository interface {
		GetCartIngredientLines(ctx context.Context, userID string) ([]domain.CartLine, error)
	}

	shoppingRepository struct {
		db *gorm.DB
	}
)

func NewShoppingRepository(db *gorm.DB) ShoppingRepository {
	return &shoppingRepository{db: db}
}

// GetCartIngredientLines returns every ingredient line reachable from a
// recipe in the user's shopping cart, unaggregated.
func (r *shoppingRepository) GetCartIngredientLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeIngredient{}).
		Select(
			"recipe_ingredients.ingredient_id as ingredient_id, " +
				"ingredients.name as name, " +
				"ingredients.measurement_unit as measurement_unit, " +
				"recipe_ingredients.amount as amount",
		).
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
