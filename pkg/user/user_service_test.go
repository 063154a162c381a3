package user

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeUserRepository struct {
	users   map[string]*entities.User
	follows map[string]entities.Follow
	recipes map[string][]entities.Recipe

	createFollowErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users:   make(map[string]*entities.User),
		follows: make(map[string]entities.Follow),
		recipes: make(map[string][]entities.Recipe),
	}
}

func (r *fakeUserRepository) CreateUser(_ context.Context, user *entities.User) error {
	r.users[user.ID.String()] = user
	return nil
}

func (r *fakeUserRepository) GetUserByID(_ context.Context, id string) (*entities.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepository) GetUserByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepository) GetUserByUsername(_ context.Context, username string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepository) UpdateUser(_ context.Context, user *entities.User) error {
	r.users[user.ID.String()] = user
	return nil
}

func (r *fakeUserRepository) CreateFollow(_ context.Context, follow *entities.Follow) error {
	if r.createFollowErr != nil {
		return r.createFollowErr
	}
	r.follows[follow.UserID.String()+"/"+follow.AuthorID.String()] = *follow
	return nil
}

func (r *fakeUserRepository) DeleteFollow(_ context.Context, userID, authorID string) (int64, error) {
	key := userID + "/" + authorID
	if _, ok := r.follows[key]; !ok {
		return 0, nil
	}
	delete(r.follows, key)
	return 1, nil
}

func (r *fakeUserRepository) IsFollowing(_ context.Context, userID, authorID string) (bool, error) {
	_, ok := r.follows[userID+"/"+authorID]
	return ok, nil
}

func (r *fakeUserRepository) GetSubscriptions(_ context.Context, userID string, _, _ int) ([]entities.User, int64, error) {
	var authors []entities.User
	for _, follow := range r.follows {
		if follow.UserID.String() == userID {
			authors = append(authors, *r.users[follow.AuthorID.String()])
		}
	}
	return authors, int64(len(authors)), nil
}

func (r *fakeUserRepository) GetRecipesByAuthor(_ context.Context, authorID string, limit int) ([]entities.Recipe, error) {
	recipes := r.recipes[authorID]
	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}

func (r *fakeUserRepository) CountRecipesByAuthor(_ context.Context, authorID string) (int64, error) {
	return int64(len(r.recipes[authorID])), nil
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

func newTestUserService() (UserService, *fakeUserRepository) {
	repo := newFakeUserRepository()
	return NewUserService(repo, jwt.NewJWTService(), fakeS3{}), repo
}

func seedUser(repo *fakeUserRepository, email, username string) *entities.User {
	user := &entities.User{
		ID:       uuid.New(),
		Email:    email,
		Username: username,
	}
	repo.users[user.ID.String()] = user
	return user
}

func TestRegisterRejectsTakenIdentity(t *testing.T) {
	svc, repo := newTestUserService()
	seedUser(repo, "taken@example.com", "taken")

	req := domain.UserRegisterRequest{
		Email:     "taken@example.com",
		Username:  "fresh",
		FirstName: "A",
		LastName:  "B",
		Password:  "secret123",
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, domain.ErrEmailAlreadyUsed) {
		t.Fatalf("expected email already used, got %v", err)
	}

	req.Email = "fresh@example.com"
	req.Username = "taken"
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, domain.ErrUsernameAlreadyUsed) {
		t.Fatalf("expected username already used, got %v", err)
	}
}

func TestRegisterRejectsInvalidUsername(t *testing.T) {
	svc, _ := newTestUserService()

	req := domain.UserRegisterRequest{
		Email:     "user@example.com",
		Username:  "has spaces!",
		FirstName: "A",
		LastName:  "B",
		Password:  "secret123",
	}
	if _, err := svc.Register(context.Background(), req); !errors.Is(err, domain.ErrInvalidUsername) {
		t.Fatalf("expected invalid username, got %v", err)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, repo := newTestUserService()

	req := domain.UserRegisterRequest{
		Email:     "user@example.com",
		Username:  "user.name",
		FirstName: "A",
		LastName:  "B",
		Password:  "secret123",
	}
	res, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	stored := repo.users[res.ID]
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if stored.Password == req.Password || stored.Password == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestUserService()

	req := domain.UserRegisterRequest{
		Email:     "user@example.com",
		Username:  "username",
		FirstName: "A",
		LastName:  "B",
		Password:  "secret123",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(context.Background(), domain.UserLoginRequest{
		Email:    "user@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, domain.ErrCredentialsNotValid) {
		t.Fatalf("expected credentials not valid, got %v", err)
	}

	_, err = svc.Login(context.Background(), domain.UserLoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, domain.ErrCredentialsNotValid) {
		t.Fatalf("expected credentials not valid for unknown email, got %v", err)
	}
}

func TestSubscribeRejectsSelfFollow(t *testing.T) {
	svc, repo := newTestUserService()
	user := seedUser(repo, "user@example.com", "user")

	_, err := svc.Subscribe(context.Background(), user.ID.String(), user.ID.String(), 0)
	if !errors.Is(err, domain.ErrSelfFollow) {
		t.Fatalf("expected self follow rejected, got %v", err)
	}
}

func TestSubscribeConflictsAndUnknownAuthor(t *testing.T) {
	svc, repo := newTestUserService()
	user := seedUser(repo, "user@example.com", "user")
	author := seedUser(repo, "author@example.com", "author")

	if _, err := svc.Subscribe(context.Background(), user.ID.String(), uuid.New().String(), 0); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}

	if _, err := svc.Subscribe(context.Background(), user.ID.String(), author.ID.String(), 0); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := svc.Subscribe(context.Background(), user.ID.String(), author.ID.String(), 0); !errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Fatalf("expected already subscribed, got %v", err)
	}
}

func TestSubscribeTranslatesUniqueViolation(t *testing.T) {
	svc, repo := newTestUserService()
	user := seedUser(repo, "user@example.com", "user")
	author := seedUser(repo, "author@example.com", "author")

	// A concurrent duplicate slips past the existence check and loses
	// on the unique constraint instead.
	repo.createFollowErr = &pgconn.PgError{Code: "23505"}
	_, err := svc.Subscribe(context.Background(), user.ID.String(), author.ID.String(), 0)
	if !errors.Is(err, domain.ErrAlreadySubscribed) {
		t.Fatalf("expected already subscribed from unique violation, got %v", err)
	}
}

func TestGetUserDetailComputesSubscription(t *testing.T) {
	svc, repo := newTestUserService()
	viewer := seedUser(repo, "viewer@example.com", "viewer")
	author := seedUser(repo, "author@example.com", "author")

	if _, err := svc.Subscribe(context.Background(), viewer.ID.String(), author.ID.String(), 0); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	res, err := svc.GetUserDetail(context.Background(), author.ID.String(), viewer.ID.String())
	if err != nil {
		t.Fatalf("get user detail: %v", err)
	}
	if !res.IsSubscribed {
		t.Fatal("follower must see is_subscribed on the author")
	}

	res, err = svc.GetUserDetail(context.Background(), author.ID.String(), "")
	if err != nil {
		t.Fatalf("get user detail: %v", err)
	}
	if res.IsSubscribed {
		t.Fatal("anonymous viewer must not see is_subscribed")
	}

	if _, err := svc.GetUserDetail(context.Background(), uuid.New().String(), viewer.ID.String()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestUnsubscribeWithoutFollowConflicts(t *testing.T) {
	svc, repo := newTestUserService()
	user := seedUser(repo, "user@example.com", "user")
	author := seedUser(repo, "author@example.com", "author")

	err := svc.Unsubscribe(context.Background(), user.ID.String(), author.ID.String())
	if !errors.Is(err, domain.ErrNotSubscribed) {
		t.Fatalf("expected not subscribed, got %v", err)
	}
}

func TestGetSubscriptionsIncludesRecipeCount(t *testing.T) {
	svc, repo := newTestUserService()
	user := seedUser(repo, "user@example.com", "user")
	author := seedUser(repo, "author@example.com", "author")
	repo.recipes[author.ID.String()] = []entities.Recipe{
		{ID: uuid.New(), Name: "Soup", CookingTime: 30},
		{ID: uuid.New(), Name: "Stew", CookingTime: 90},
	}

	if _, err := svc.Subscribe(context.Background(), user.ID.String(), author.ID.String(), 1); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	subs, count, err := svc.GetSubscriptions(context.Background(), user.ID.String(), 1, 6, 1)
	if err != nil {
		t.Fatalf("get subscriptions: %v", err)
	}
	if count != 1 || len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", count)
	}
	if subs[0].RecipesCount != 2 {
		t.Fatalf("expected 2 recipes counted, got %d", subs[0].RecipesCount)
	}
	if len(subs[0].Recipes) != 1 {
		t.Fatalf("expected recipes truncated to limit, got %d", len(subs[0].Recipes))
	}
	if !subs[0].IsSubscribed {
		t.Fatal("expected is_subscribed set")
	}
}
