package domain

import (
	"errors"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessSaveRecipe      = "recipe saved successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessFavorite        = "recipe added to favorites"
	MessageSuccessUnfavorite      = "recipe removed from favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"
	MessageSuccessGetShortLink    = "success get short link"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedSaveRecipe      = "failed to save recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedFavorite        = "failed to add recipe to favorites"
	MessageFailedUnfavorite      = "failed to remove recipe from favorites"
	MessageFailedAddToCart       = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart  = "failed to remove recipe from shopping cart"
	MessageFailedGetShortLink    = "failed to get short link"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrUnauthorizedRecipeAccess = errors.New("unauthorized access to recipe")
	ErrAlreadyFavorited         = errors.New("recipe already in favorites")
	ErrNotFavorited             = errors.New("recipe not in favorites")
	ErrAlreadyInShoppingCart    = errors.New("recipe already in shopping cart")
	ErrNotInShoppingCart        = errors.New("recipe not in shopping cart")
	ErrShortLinkNotFound        = errors.New("short link not found")
)

type (
	IngredientAmountRequest struct {
		ID     string `json:"id" validate:"required,uuid"`
		Amount int    `json:"amount"`
	}

	// CreateRecipeRequest is used for both create and update. The
	// ingredient and tag sets always describe the full desired state,
	// never a diff.
	CreateRecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=256"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime int                       `json:"cooking_time"`
		Image       string                    `json:"image"`
		Ingredients []IngredientAmountRequest `json:"ingredients"`
		Tags        []string                  `json:"tags"`
	}

	IngredientInRecipeResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               string                       `json:"id"`
		Tags             []TagResponse                `json:"tags"`
		Author           UserResponse                 `json:"author"`
		Ingredients      []IngredientInRecipeResponse `json:"ingredients"`
		IsFavorited      bool                         `json:"is_favorited"`
		IsInShoppingCart bool                         `json:"is_in_shopping_cart"`
		Name             string                       `json:"name"`
		Image            string                       `json:"image"`
		Text             string                       `json:"text"`
		CookingTime      int                          `json:"cooking_time"`
	}

	// RecipeShortResponse is the compact shape used in favorites,
	// shopping cart and subscription listings.
	RecipeShortResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	RecipeFilter struct {
		AuthorID         string
		TagSlugs         []string
		IsFavorited      bool
		IsInShoppingCart bool
		Page             int
		Limit            int
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}
)
