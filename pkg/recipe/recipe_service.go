package recipe

import (
	"context"
	"fmt"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/utils"
	"foodgram/internal/utils/shortlink"
	"foodgram/internal/utils/storage"
	"foodgram/pkg/ingredient"
	"foodgram/pkg/tag"

	"github.com/google/uuid"
)

type (
	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error)
		GetRecipeDetail(ctx context.Context, recipeID, userID string) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, userID string) ([]domain.RecipeResponse, int64, error)
		DeleteRecipe(ctx context.Context, recipeID, userID string) error

		FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error)
		UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error
		AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error)
		RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error

		GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error)
		ResolveShortLink(ctx context.Context, code string) (string, error)
	}

	// FollowRepository resolves whether a user follows an author.
	// Satisfied by the user package's repository.
	FollowRepository interface {
		IsFollowing(ctx context.Context, userID, authorID string) (bool, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		ingredientRepository ingredient.IngredientRepository
		tagRepository        tag.TagRepository
		followRepository     FollowRepository
		s3                   storage.AwsS3
		codec                *shortlink.Codec
		validator            *CompositionValidator
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	ingredientRepository ingredient.IngredientRepository,
	tagRepository tag.TagRepository,
	followRepository FollowRepository,
	s3 storage.AwsS3,
	codec *shortlink.Codec,
	cfg domain.RecipeConfig,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		ingredientRepository: ingredientRepository,
		tagRepository:        tagRepository,
		followRepository:     followRepository,
		s3:                   s3,
		codec:                codec,
		validator:            NewCompositionValidator(cfg),
	}
}

// resolveComposition loads the referenced ingredients and tags and runs
// the composition validator against them. On success it returns the
// entity rows needed for persistence in request order.
func (s *recipeService) resolveComposition(
	ctx context.Context,
	req domain.CreateRecipeRequest,
	requireImage bool,
) ([]entities.RecipeIngredient, []entities.Tag, error) {
	ingredientIDs := make([]string, 0, len(req.Ingredients))
	for _, line := range req.Ingredients {
		ingredientIDs = append(ingredientIDs, line.ID)
	}

	existingIngredients, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}
	ingredientMap := make(map[string]entities.Ingredient, len(existingIngredients))
	for _, ing := range existingIngredients {
		ingredientMap[ing.ID.String()] = ing
	}

	existingTags, err := s.tagRepository.GetTagsByIDs(ctx, req.Tags)
	if err != nil {
		return nil, nil, err
	}
	tagMap := make(map[string]entities.Tag, len(existingTags))
	for _, t := range existingTags {
		tagMap[t.ID.String()] = t
	}

	if errs := s.validator.Validate(req, ingredientMap, tagMap, requireImage); errs != nil {
		return nil, nil, errs
	}

	lines := make([]entities.RecipeIngredient, 0, len(req.Ingredients))
	for _, line := range req.Ingredients {
		lines = append(lines, entities.RecipeIngredient{
			ID:           uuid.New(),
			IngredientID: ingredientMap[line.ID].ID,
			Amount:       line.Amount,
		})
	}

	tags := make([]entities.Tag, 0, len(req.Tags))
	for _, id := range req.Tags {
		tags = append(tags, tagMap[id])
	}

	return lines, tags, nil
}

func (s *recipeService) uploadImage(image string) (string, error) {
	data, contentType, err := utils.DecodeBase64Image(image)
	if err != nil {
		return "", domain.ValidationErrors{"image": {"invalid image payload"}}
	}

	objectKey, err := s.s3.UploadBytes("recipes", data, contentType)
	if err != nil {
		return "", err
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	lines, tags, err := s.resolveComposition(ctx, req, true)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	imageURL, err := s.uploadImage(req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := entities.Recipe{
		ID:          uuid.New(),
		UserID:      userUUID,
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	if err := s.recipeRepository.CreateRecipe(ctx, &recipe, lines, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), userID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.CreateRecipeRequest, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if recipe.UserID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrUnauthorizedRecipeAccess
	}

	lines, tags, err := s.resolveComposition(ctx, req, false)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	if req.Image != "" {
		imageURL, err := s.uploadImage(req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		recipe.ImageURL = imageURL
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime
	recipe.Tags = nil
	recipe.IngredientLines = nil

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, lines, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, userID)
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, recipe, userID)
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, userID string) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, userID)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		response, err := s.toRecipeResponse(ctx, recipe, userID)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, response)
	}
	return res, count, nil
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID, userID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.UserID.String() != userID {
		return domain.ErrUnauthorizedRecipeAccess
	}
	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}

	favorited, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if favorited {
		return domain.RecipeShortResponse{}, domain.ErrAlreadyFavorited
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeShortResponse{}, domain.ErrParseUUID
	}

	favorite := entities.Favorite{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipe.ID,
	}
	if err := s.recipeRepository.CreateFavorite(ctx, &favorite); err != nil {
		// A concurrent duplicate loses on the unique constraint and
		// gets the same conflict a sequential check produces.
		if utils.IsUniqueViolation(err) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyFavorited
		}
		return domain.RecipeShortResponse{}, err
	}

	return toRecipeShortResponse(recipe), nil
}

func (s *recipeService) UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		return err
	}

	deleted, err := s.recipeRepository.DeleteFavorite(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotFavorited
	}
	return nil
}

func (s *recipeService) AddToShoppingCart(ctx context.Context, recipeID, userID string) (domain.RecipeShortResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}

	inCart, err := s.recipeRepository.IsInShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if inCart {
		return domain.RecipeShortResponse{}, domain.ErrAlreadyInShoppingCart
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeShortResponse{}, domain.ErrParseUUID
	}

	entry := entities.ShoppingCart{
		ID:       uuid.New(),
		UserID:   userUUID,
		RecipeID: recipe.ID,
	}
	if err := s.recipeRepository.CreateShoppingCart(ctx, &entry); err != nil {
		if utils.IsUniqueViolation(err) {
			return domain.RecipeShortResponse{}, domain.ErrAlreadyInShoppingCart
		}
		return domain.RecipeShortResponse{}, err
	}

	return toRecipeShortResponse(recipe), nil
}

func (s *recipeService) RemoveFromShoppingCart(ctx context.Context, recipeID, userID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		return err
	}

	deleted, err := s.recipeRepository.DeleteShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotInShoppingCart
	}
	return nil
}

func (s *recipeService) GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return domain.ShortLinkResponse{}, err
	}

	code, err := s.codec.Encode(recipe.Seq)
	if err != nil {
		return domain.ShortLinkResponse{}, err
	}

	return domain.ShortLinkResponse{
		ShortLink: fmt.Sprintf("%s/s/%s", utils.GetConfig("APP_URL"), code),
	}, nil
}

func (s *recipeService) ResolveShortLink(ctx context.Context, code string) (string, error) {
	seq, err := s.codec.Decode(code)
	if err != nil {
		return "", domain.ErrShortLinkNotFound
	}

	recipe, err := s.recipeRepository.GetRecipeBySeq(ctx, seq)
	if err != nil {
		return "", domain.ErrShortLinkNotFound
	}
	return recipe.ID.String(), nil
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, userID string) (domain.RecipeResponse, error) {
	var isFavorited, isInCart, isSubscribed bool
	if userID != "" {
		var err error
		if isFavorited, err = s.recipeRepository.IsFavorited(ctx, userID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
		if isInCart, err = s.recipeRepository.IsInShoppingCart(ctx, userID, recipe.ID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
		if isSubscribed, err = s.followRepository.IsFollowing(ctx, userID, recipe.UserID.String()); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:   t.ID.String(),
			Name: t.Name,
			Slug: t.Slug,
		})
	}

	ingredients := make([]domain.IngredientInRecipeResponse, 0, len(recipe.IngredientLines))
	for _, line := range recipe.IngredientLines {
		ing := domain.IngredientInRecipeResponse{
			ID:     line.IngredientID.String(),
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			ing.Name = line.Ingredient.Name
			ing.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, ing)
	}

	author := domain.UserResponse{}
	if recipe.User != nil {
		author = domain.UserResponse{
			ID:           recipe.User.ID.String(),
			Email:        recipe.User.Email,
			Username:     recipe.User.Username,
			FirstName:    recipe.User.FirstName,
			LastName:     recipe.User.LastName,
			IsSubscribed: isSubscribed,
			Avatar:       recipe.User.AvatarURL,
		}
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}, nil
}

func toRecipeShortResponse(recipe *entities.Recipe) domain.RecipeShortResponse {
	return domain.RecipeShortResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
