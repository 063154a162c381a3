package recipe

import (
	"context"
	"errors"

	"foodgram/domain"
	"foodgram/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipeBySeq(ctx context.Context, seq int64) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, userID string) ([]*entities.Recipe, int64, error)
		DeleteRecipe(ctx context.Context, id string) error

		CreateFavorite(ctx context.Context, favorite *entities.Favorite) error
		DeleteFavorite(ctx context.Context, userID, recipeID string) (int64, error)
		IsFavorited(ctx context.Context, userID, recipeID string) (bool, error)

		CreateShoppingCart(ctx context.Context, entry *entities.ShoppingCart) error
		DeleteShoppingCart(ctx context.Context, userID, recipeID string) (int64, error)
		IsInShoppingCart(ctx context.Context, userID, recipeID string) (bool, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// CreateRecipe persists the recipe, its ingredient lines and its tag
// set in one transaction; either everything commits or nothing does.
func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "IngredientLines", "User").Create(recipe).Error; err != nil {
			return err
		}

		for i := range lines {
			lines[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}

		return tx.Model(recipe).Association("Tags").Replace(tags)
	})
}

// UpdateRecipe replaces the recipe's ingredient lines and tag set with
// the given ones. The old lines are discarded entirely, never merged;
// a crash mid-way rolls back to the previous complete set.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "IngredientLines", "User").Save(recipe).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).
			Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}

		for i := range lines {
			lines[i].RecipeID = recipe.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}

		return tx.Model(recipe).Association("Tags").Replace(tags)
	})
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		Preload("IngredientLines.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetRecipeBySeq(ctx context.Context, seq int64) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Where("seq = ?", seq).
		First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) applyFilter(ctx context.Context, filter domain.RecipeFilter, userID string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if filter.AuthorID != "" {
		query = query.Where("recipes.user_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
	}
	if filter.IsFavorited && userID != "" {
		query = query.Joins(
			"JOIN favorites ON favorites.recipe_id = recipes.id AND favorites.user_id = ?",
			userID,
		)
	}
	if filter.IsInShoppingCart && userID != "" {
		query = query.Joins(
			"JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ?",
			userID,
		)
	}

	return query
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, userID string) ([]*entities.Recipe, int64, error) {
	var count int64
	if err := r.applyFilter(ctx, filter, userID).
		Distinct("recipes.id").
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var recipes []*entities.Recipe
	offset := (filter.Page - 1) * filter.Limit
	if err := r.applyFilter(ctx, filter, userID).
		Distinct().
		Preload("User").
		Preload("Tags").
		Preload("IngredientLines.Ingredient").
		Order("recipes.created_at desc").
		Offset(offset).
		Limit(filter.Limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Recipe{ID: mustUUID(id)}).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Recipe{}).Error
	})
}

func mustUUID(id string) uuid.UUID {
	parsed, _ := uuid.Parse(id)
	return parsed
}

func (r *recipeRepository) CreateFavorite(ctx context.Context, favorite *entities.Favorite) error {
	return r.db.WithContext(ctx).Create(favorite).Error
}

func (r *recipeRepository) DeleteFavorite(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) IsFavorited(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) CreateShoppingCart(ctx context.Context, entry *entities.ShoppingCart) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *recipeRepository) DeleteShoppingCart(ctx context.Context, userID, recipeID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.ShoppingCart{})
	return res.RowsAffected, res.Error
}

func (r *recipeRepository) IsInShoppingCart(ctx context.Context, userID, recipeID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.ShoppingCart{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
