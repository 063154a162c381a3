package recipe

import (
	"fmt"
	"strings"

	"foodgram/domain"
	"foodgram/entities"
)

// CompositionValidator checks the ingredient and tag composition of a
// recipe payload. Every rule runs and every violation is collected, so
// the caller gets the complete picture in one pass instead of fixing
// errors one at a time.
type CompositionValidator struct {
	cfg domain.RecipeConfig
}

func NewCompositionValidator(cfg domain.RecipeConfig) *CompositionValidator {
	return &CompositionValidator{cfg: cfg}
}

// Validate returns nil when the payload is acceptable. The ingredients
// and tags maps hold the referenced rows that actually exist, keyed by
// id; anything referenced but missing from the map is reported.
// requireImage is true on create; on update an omitted image keeps the
// stored one, but a provided blank image is still rejected.
func (v *CompositionValidator) Validate(
	req domain.CreateRecipeRequest,
	ingredients map[string]entities.Ingredient,
	tags map[string]entities.Tag,
	requireImage bool,
) domain.ValidationErrors {
	errs := domain.ValidationErrors{}

	v.validateIngredients(req, ingredients, errs)
	v.validateTags(req, tags, errs)
	v.validateImage(req, requireImage, errs)
	v.validateCookingTime(req, errs)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *CompositionValidator) validateIngredients(
	req domain.CreateRecipeRequest,
	ingredients map[string]entities.Ingredient,
	errs domain.ValidationErrors,
) {
	if len(req.Ingredients) == 0 {
		errs.Add("ingredients", "this field is required and must not be empty")
		return
	}

	seen := make(map[string]bool, len(req.Ingredients))
	for _, line := range req.Ingredients {
		if seen[line.ID] {
			errs.Add("ingredients", "ingredients must not repeat")
			break
		}
		seen[line.ID] = true
	}

	for _, line := range req.Ingredients {
		if _, ok := ingredients[line.ID]; !ok {
			errs.Add("ingredients", fmt.Sprintf("ingredient %s does not exist", line.ID))
		}
	}

	for _, line := range req.Ingredients {
		if line.Amount < v.cfg.MinIngredientAmount {
			errs.Add("ingredients", fmt.Sprintf(
				"amount for ingredient %s must be at least %d",
				line.ID, v.cfg.MinIngredientAmount,
			))
		}
	}
}

func (v *CompositionValidator) validateTags(
	req domain.CreateRecipeRequest,
	tags map[string]entities.Tag,
	errs domain.ValidationErrors,
) {
	if len(req.Tags) == 0 {
		errs.Add("tags", "this field is required and must not be empty")
		return
	}

	seen := make(map[string]bool, len(req.Tags))
	for _, id := range req.Tags {
		if seen[id] {
			errs.Add("tags", "tags must not repeat")
			break
		}
		seen[id] = true
	}

	for _, id := range req.Tags {
		if _, ok := tags[id]; !ok {
			errs.Add("tags", fmt.Sprintf("tag %s does not exist", id))
		}
	}
}

func (v *CompositionValidator) validateImage(
	req domain.CreateRecipeRequest,
	requireImage bool,
	errs domain.ValidationErrors,
) {
	blank := strings.TrimSpace(req.Image) == ""
	if requireImage && blank {
		errs.Add("image", "this field is required")
		return
	}
	if !requireImage && req.Image != "" && blank {
		errs.Add("image", "image must not be blank")
	}
}

func (v *CompositionValidator) validateCookingTime(
	req domain.CreateRecipeRequest,
	errs domain.ValidationErrors,
) {
	if req.CookingTime < v.cfg.MinCookingTime || req.CookingTime > v.cfg.MaxCookingTime {
		errs.Add("cooking_time", fmt.Sprintf(
			"cooking time must be between %d and %d minutes",
			v.cfg.MinCookingTime, v.cfg.MaxCookingTime,
		))
	}
}
