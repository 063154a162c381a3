package ingredient

import (
	"context"

	"foodgram/domain"
	"foodgram/entities"
)

type (
	IngredientService interface {
		GetIngredients(ctx context.Context, name string) ([]domain.IngredientResponse, error)
		GetIngredientDetail(ctx context.Context, id string) (domain.IngredientResponse, error)
	}

	ingredientService struct {
		ingredientRepository IngredientRepository
	}
)

func NewIngredientService(ingredientRepository IngredientRepository) IngredientService {
	return &ingredientService{ingredientRepository: ingredientRepository}
}

func (s *ingredientService) GetIngredients(ctx context.Context, name string) ([]domain.IngredientResponse, error) {
	ingredients, err := s.ingredientRepository.GetIngredients(ctx, name)
	if err != nil {
		return nil, err
	}

	res := make([]domain.IngredientResponse, 0, len(ingredients))
	for _, ing := range ingredients {
		res = append(res, toIngredientResponse(ing))
	}
	return res, nil
}

func (s *ingredientService) GetIngredientDetail(ctx context.Context, id string) (domain.IngredientResponse, error) {
	ing, err := s.ingredientRepository.GetIngredientByID(ctx, id)
	if err != nil {
		return domain.IngredientResponse{}, err
	}
	return toIngredientResponse(*ing), nil
}

func toIngredientResponse(i entities.Ingredient) domain.IngredientResponse {
	return domain.IngredientResponse{
		ID:              i.ID.String(),
		Name:            i.Name,
		MeasurementUnit: i.MeasurementUnit,
	}
}
