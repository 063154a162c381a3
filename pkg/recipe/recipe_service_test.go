package recipe

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/utils/shortlink"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRecipeRepository struct {
	recipes   map[string]*entities.Recipe
	lines     map[string][]entities.RecipeIngredient
	tags      map[string][]entities.Tag
	favorites map[string]bool
	carts     map[string]bool
	nextSeq   int64

	createFavoriteErr error
	createCartErr     error
}

func newFakeRecipeRepository() *fakeRecipeRepository {
	return &fakeRecipeRepository{
		recipes:   make(map[string]*entities.Recipe),
		lines:     make(map[string][]entities.RecipeIngredient),
		tags:      make(map[string][]entities.Tag),
		favorites: make(map[string]bool),
		carts:     make(map[string]bool),
	}
}

func (r *fakeRecipeRepository) CreateRecipe(_ context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag) error {
	r.nextSeq++
	recipe.Seq = r.nextSeq
	r.recipes[recipe.ID.String()] = recipe
	r.lines[recipe.ID.String()] = lines
	r.tags[recipe.ID.String()] = tags
	return nil
}

func (r *fakeRecipeRepository) UpdateRecipe(_ context.Context, recipe *entities.Recipe, lines []entities.RecipeIngredient, tags []entities.Tag) error {
	r.recipes[recipe.ID.String()] = recipe
	r.lines[recipe.ID.String()] = lines
	r.tags[recipe.ID.String()] = tags
	return nil
}

func (r *fakeRecipeRepository) GetRecipeByID(_ context.Context, id string) (*entities.Recipe, error) {
	recipe, ok := r.recipes[id]
	if !ok {
		return nil, domain.ErrRecipeNotFound
	}
	loaded := *recipe
	loaded.IngredientLines = r.lines[id]
	loaded.Tags = r.tags[id]
	if loaded.User == nil {
		loaded.User = &entities.User{ID: loaded.UserID}
	}
	return &loaded, nil
}

func (r *fakeRecipeRepository) GetRecipeBySeq(_ context.Context, seq int64) (*entities.Recipe, error) {
	for _, recipe := range r.recipes {
		if recipe.Seq == seq {
			return recipe, nil
		}
	}
	return nil, domain.ErrRecipeNotFound
}

func (r *fakeRecipeRepository) GetRecipes(_ context.Context, _ domain.RecipeFilter, _ string) ([]*entities.Recipe, int64, error) {
	recipes := make([]*entities.Recipe, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		recipes = append(recipes, recipe)
	}
	return recipes, int64(len(recipes)), nil
}

func (r *fakeRecipeRepository) DeleteRecipe(_ context.Context, id string) error {
	delete(r.recipes, id)
	delete(r.lines, id)
	delete(r.tags, id)
	return nil
}

func (r *fakeRecipeRepository) CreateFavorite(_ context.Context, favorite *entities.Favorite) error {
	if r.createFavoriteErr != nil {
		return r.createFavoriteErr
	}
	r.favorites[favorite.UserID.String()+"/"+favorite.RecipeID.String()] = true
	return nil
}

func (r *fakeRecipeRepository) DeleteFavorite(_ context.Context, userID, recipeID string) (int64, error) {
	key := userID + "/" + recipeID
	if !r.favorites[key] {
		return 0, nil
	}
	delete(r.favorites, key)
	return 1, nil
}

func (r *fakeRecipeRepository) IsFavorited(_ context.Context, userID, recipeID string) (bool, error) {
	return r.favorites[userID+"/"+recipeID], nil
}

func (r *fakeRecipeRepository) CreateShoppingCart(_ context.Context, entry *entities.ShoppingCart) error {
	if r.createCartErr != nil {
		return r.createCartErr
	}
	r.carts[entry.UserID.String()+"/"+entry.RecipeID.String()] = true
	return nil
}

func (r *fakeRecipeRepository) DeleteShoppingCart(_ context.Context, userID, recipeID string) (int64, error) {
	key := userID + "/" + recipeID
	if !r.carts[key] {
		return 0, nil
	}
	delete(r.carts, key)
	return 1, nil
}

func (r *fakeRecipeRepository) IsInShoppingCart(_ context.Context, userID, recipeID string) (bool, error) {
	return r.carts[userID+"/"+recipeID], nil
}

type fakeFollowRepository struct {
	follows map[string]bool
}

func (r *fakeFollowRepository) IsFollowing(_ context.Context, userID, authorID string) (bool, error) {
	return r.follows[userID+"/"+authorID], nil
}

type fakeIngredientRepository struct {
	ingredients map[string]entities.Ingredient
}

func (r *fakeIngredientRepository) GetIngredients(_ context.Context, _ string) ([]entities.Ingredient, error) {
	out := make([]entities.Ingredient, 0, len(r.ingredients))
	for _, ing := range r.ingredients {
		out = append(out, ing)
	}
	return out, nil
}

func (r *fakeIngredientRepository) GetIngredientByID(_ context.Context, id string) (*entities.Ingredient, error) {
	ing, ok := r.ingredients[id]
	if !ok {
		return nil, domain.ErrIngredientNotFound
	}
	return &ing, nil
}

func (r *fakeIngredientRepository) GetIngredientsByIDs(_ context.Context, ids []string) ([]entities.Ingredient, error) {
	var out []entities.Ingredient
	for _, id := range ids {
		if ing, ok := r.ingredients[id]; ok {
			out = append(out, ing)
		}
	}
	return out, nil
}

type fakeTagRepository struct {
	tags map[string]entities.Tag
}

func (r *fakeTagRepository) GetTags(_ context.Context) ([]entities.Tag, error) {
	out := make([]entities.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTagRepository) GetTagByID(_ context.Context, id string) (*entities.Tag, error) {
	t, ok := r.tags[id]
	if !ok {
		return nil, domain.ErrTagNotFound
	}
	return &t, nil
}

func (r *fakeTagRepository) GetTagsByIDs(_ context.Context, ids []string) ([]entities.Tag, error) {
	var out []entities.Tag
	for _, id := range ids {
		if t, ok := r.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeS3 struct{}

func (fakeS3) UploadFile(string, *multipart.FileHeader, ...string) (string, error) { return "", nil }

func (fakeS3) UploadBytes(dir string, _ []byte, _ string) (string, error) {
	return dir + "/object", nil
}

func (fakeS3) DeleteFile(string) error { return nil }

func (fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func newTestService(t *testing.T) (RecipeService, *fakeRecipeRepository, *fakeIngredientRepository, *fakeTagRepository, *fakeFollowRepository) {
	t.Helper()

	recipeRepo := newFakeRecipeRepository()
	ingredientRepo := &fakeIngredientRepository{ingredients: map[string]entities.Ingredient{}}
	tagRepo := &fakeTagRepository{tags: map[string]entities.Tag{}}
	followRepo := &fakeFollowRepository{follows: map[string]bool{}}

	codec, err := shortlink.NewCodec("test-salt")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	svc := NewRecipeService(recipeRepo, ingredientRepo, tagRepo, followRepo, fakeS3{}, codec, testConfig())
	return svc, recipeRepo, ingredientRepo, tagRepo, followRepo
}

func seedComposition(ingredientRepo *fakeIngredientRepository, tagRepo *fakeTagRepository, ingredientIDs, tagIDs []string) {
	for _, id := range ingredientIDs {
		ingredientRepo.ingredients[id] = entities.Ingredient{
			ID: uuid.MustParse(id), Name: "ingredient " + id[:4], MeasurementUnit: "g",
		}
	}
	for _, id := range tagIDs {
		tagRepo.tags[id] = entities.Tag{ID: uuid.MustParse(id), Name: "tag " + id[:4], Slug: "tag-" + id[:4]}
	}
}

func TestCreateRecipePersistsComposition(t *testing.T) {
	svc, recipeRepo, ingredientRepo, tagRepo, _ := newTestService(t)
	seedComposition(ingredientRepo, tagRepo, []string{ingA, ingB}, []string{tagA, tagB})
	userID := uuid.New().String()

	res, err := svc.CreateRecipe(context.Background(), validRequest(), userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	lines := recipeRepo.lines[res.ID]
	if len(lines) != 2 {
		t.Fatalf("expected 2 ingredient lines, got %d", len(lines))
	}
	if lines[0].IngredientID.String() != ingA || lines[0].Amount != 2 {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if len(recipeRepo.tags[res.ID]) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(recipeRepo.tags[res.ID]))
	}
	if res.Image == "" {
		t.Fatal("expected image url on response")
	}
}

func TestCreateRecipeRejectsInvalidComposition(t *testing.T) {
	svc, recipeRepo, ingredientRepo, tagRepo, _ := newTestService(t)
	// ingB left unseeded so the reference is dangling.
	seedComposition(ingredientRepo, tagRepo, []string{ingA}, []string{tagA, tagB})

	_, err := svc.CreateRecipe(context.Background(), validRequest(), uuid.New().String())
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if len(recipeRepo.recipes) != 0 {
		t.Fatal("nothing should be persisted on validation failure")
	}
}

func TestUpdateRecipeReplacesLines(t *testing.T) {
	svc, recipeRepo, ingredientRepo, tagRepo, _ := newTestService(t)
	ingC := "55555555-5555-5555-5555-555555555555"
	seedComposition(ingredientRepo, tagRepo, []string{ingA, ingB, ingC}, []string{tagA, tagB})
	userID := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validRequest(), userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	update := validRequest()
	update.Image = ""
	update.Ingredients = []domain.IngredientAmountRequest{
		{ID: ingA, Amount: 5},
		{ID: ingC, Amount: 1},
	}
	update.Tags = []string{tagA}

	if _, err := svc.UpdateRecipe(context.Background(), created.ID, update, userID); err != nil {
		t.Fatalf("update: %v", err)
	}

	lines := recipeRepo.lines[created.ID]
	if len(lines) != 2 {
		t.Fatalf("expected full replacement with 2 lines, got %d", len(lines))
	}
	got := map[string]int{}
	for _, line := range lines {
		got[line.IngredientID.String()] = line.Amount
	}
	if got[ingA] != 5 || got[ingC] != 1 {
		t.Fatalf("unexpected line amounts: %v", got)
	}
	if _, stillThere := got[ingB]; stillThere {
		t.Fatal("old line must not survive a full replace")
	}
	if len(recipeRepo.tags[created.ID]) != 1 {
		t.Fatalf("expected tag set replaced, got %v", recipeRepo.tags[created.ID])
	}
}

func TestUpdateRecipeRejectsNonOwner(t *testing.T) {
	svc, _, ingredientRepo, tagRepo, _ := newTestService(t)
	seedComposition(ingredientRepo, tagRepo, []string{ingA, ingB}, []string{tagA, tagB})

	created, err := svc.CreateRecipe(context.Background(), validRequest(), uuid.New().String())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.UpdateRecipe(context.Background(), created.ID, validRequest(), uuid.New().String())
	if !errors.Is(err, domain.ErrUnauthorizedRecipeAccess) {
		t.Fatalf("expected unauthorized access error, got %v", err)
	}
}

func TestFavoriteToggleConflicts(t *testing.T) {
	svc, _, ingredientRepo, tagRepo, _ := newTestService(t)
	seedComposition(ingredientRepo, tagRepo, []string{ingA, ingB}, []string{tagA, tagB})
	userID := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validRequest(), userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.FavoriteRecipe(context.Background(), created.ID, userID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if _, err := svc.FavoriteRecipe(context.Background(), created.ID, userID); !errors.Is(err, domain.ErrAlreadyFavorited) {
		t.Fatalf("expected already favorited, got %v", err)
	}

	if err := svc.UnfavoriteRecipe(context.Background(), created.ID, userID); err != nil {
		t.Fatalf("unfavorite: %v", err)
	}
	if err := svc.UnfavoriteRecipe(context.Background(), created.ID, userID); !errors.Is(err, domain.ErrNotFavorited) {
		t.Fatalf("expected not favorited, got %v", err)
	}
}

func TestShoppingCartToggleConflicts(t *testing.T) {
	svc, _, ingredientRepo, tagRepo, _ := newTestService(t)
	seedComposition(ingredientRepo, tagRepo, []string{ingA, ingB}, []string{tagA, tagB})
	userID := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validRequest(), userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AddToShoppingCart(context.Background(), created.ID, userID); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	if _, err := svc.AddToShoppingCart(context.Background(), created.ID, userID); !errors.Is(err, domain.ErrAlreadyInShoppingCart) {
		t.Fatalf("expected already in cart, got %v", err)
	}

	if err := svc.RemoveFromShoppingCart(context.Background(), created.ID, userID); err != nil {
		t.Fatalf("remove from cart: %v", err)
	}
	if err := svc.RemoveFromShoppingCart(context.Background(), created.ID, userID); !errors.Is(err, domain.ErrNotInShoppingCart) {
		t.Fatalf("expected not in cart, got %v", err)
	}
}

func TestRecipeAuthorSubscriptionFlag(t *testing.T) {
	svc, _, ingredientRepo, tagRepo, followRepo := newTestService(t)
	seedComposition(ingredientRepo, tagRepo, []string{ingA, ingB}, []string{tagA, tagB})
	authorID := uuid.New().String()
	followerID := uuid.New().String()
	strangerID := uuid.New().String()
	followRepo.follows[followerID+"/"+authorID] = true

	created, err := svc.CreateRecipe(context.Background(), validRequest(), authorID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.GetRecipeDetail(context.Background(), created.ID, followerID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if !res.Author.IsSubscribed {
		t.Fatal("follower must see is_subscribed on the recipe author")
	}

	res, err = svc.GetRecipeDetail(context.Background(), created.ID, strangerID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if res.Author.IsSubscribed {
		t.Fatal("non-follower must not see is_subscribed on the recipe author")
	}

	res, err = svc.GetRecipeDetail(context.Background(), created.ID, "")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if res.Author.IsSubscribed {
		t.Fatal("anonymous requester must not see is_subscribed")
	}
}

func TestFavoriteTranslatesUniqueViolation(t *testing.T) {
	svc, recipeRepo, ingredientRepo, tagRepo, _ := newTestService(t)
	seedComposition(ingredientRepo, tagRepo, []string{ingA, ingB}, []string{tagA, tagB})
	userID := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validRequest(), userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A concurrent duplicate slips past the existence check and loses
	// on the unique constraint instead.
	recipeRepo.createFavoriteErr = &pgconn.PgError{Code: "23505"}
	if _, err := svc.FavoriteRecipe(context.Background(), created.ID, userID); !errors.Is(err, domain.ErrAlreadyFavorited) {
		t.Fatalf("expected already favorited from unique violation, got %v", err)
	}
}

func TestShoppingCartTranslatesUniqueViolation(t *testing.T) {
	svc, recipeRepo, ingredientRepo, tagRepo, _ := newTestService(t)
	seedComposition(ingredientRepo, tagRepo, []string{ingA, ingB}, []string{tagA, tagB})
	userID := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validRequest(), userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	recipeRepo.createCartErr = &pgconn.PgError{Code: "23505"}
	if _, err := svc.AddToShoppingCart(context.Background(), created.ID, userID); !errors.Is(err, domain.ErrAlreadyInShoppingCart) {
		t.Fatalf("expected already in cart from unique violation, got %v", err)
	}
}

func TestShortLinkRoundTrip(t *testing.T) {
	svc, _, ingredientRepo, tagRepo, _ := newTestService(t)
	seedComposition(ingredientRepo, tagRepo, []string{ingA, ingB}, []string{tagA, tagB})
	userID := uuid.New().String()

	created, err := svc.CreateRecipe(context.Background(), validRequest(), userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	link, err := svc.GetShortLink(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get short link: %v", err)
	}
	if link.ShortLink == "" {
		t.Fatal("expected short link")
	}

	code := link.ShortLink[strings.LastIndex(link.ShortLink, "/")+1:]
	resolved, err := svc.ResolveShortLink(context.Background(), code)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, resolved)
	}

	if _, err := svc.ResolveShortLink(context.Background(), "not-a-code"); !errors.Is(err, domain.ErrShortLinkNotFound) {
		t.Fatalf("expected short link not found, got %v", err)
	}
}
