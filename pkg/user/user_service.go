package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"foodgram/domain"
	"foodgram/entities"
	"foodgram/internal/utils"
	"foodgram/internal/utils/mailing"
	"foodgram/internal/utils/storage"
	"foodgram/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type (
	UserService interface {
		Register(ctx context.Context, req domain.UserRegisterRequest) (domain.UserResponse, error)
		Login(ctx context.Context, req domain.UserLoginRequest) (domain.UserLoginResponse, error)
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		GetUserDetail(ctx context.Context, id, viewerID string) (domain.UserResponse, error)
		UpdateAvatar(ctx context.Context, req domain.UpdateAvatarRequest, userID string) (domain.UpdateAvatarResponse, error)
		DeleteAvatar(ctx context.Context, userID string) error
		SendVerificationEmail(ctx context.Context, req domain.SendVerifyEmailRequest) error
		VerifyEmail(ctx context.Context, token string) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error

		Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, userID, authorID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		s3             storage.AwsS3
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, s3 storage.AwsS3) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		s3:             s3,
	}
}

func (s *userService) Register(ctx context.Context, req domain.UserRegisterRequest) (domain.UserResponse, error) {
	if !usernamePattern.MatchString(req.Username) {
		return domain.UserResponse{}, domain.ErrInvalidUsername
	}

	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.UserResponse{}, domain.ErrEmailAlreadyUsed
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserResponse{}, err
	}

	if _, err := s.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return domain.UserResponse{}, domain.ErrUsernameAlreadyUsed
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserResponse{}, err
	}

	user := entities.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
	}

	if err := s.userRepository.CreateUser(ctx, &user); err != nil {
		if utils.IsUniqueViolation(err) {
			return domain.UserResponse{}, domain.ErrEmailAlreadyUsed
		}
		return domain.UserResponse{}, err
	}

	// Best effort; registration succeeds even when SMTP is down.
	_ = s.sendVerificationMail(user.Email)

	return toUserResponse(user, false), nil
}

func (s *userService) Login(ctx context.Context, req domain.UserLoginRequest) (domain.UserLoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.UserLoginResponse{}, domain.ErrCredentialsNotValid
		}
		return domain.UserLoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.UserLoginResponse{}, domain.ErrCredentialsNotValid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), domain.RoleUser)
	return domain.UserLoginResponse{Token: token}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return toUserResponse(*user, false), nil
}

// GetUserDetail returns any user's public profile; is_subscribed is
// computed for the viewer when the request is authenticated.
func (s *userService) GetUserDetail(ctx context.Context, id, viewerID string) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return domain.UserResponse{}, err
	}

	isSubscribed := false
	if viewerID != "" && viewerID != id {
		if isSubscribed, err = s.userRepository.IsFollowing(ctx, viewerID, id); err != nil {
			return domain.UserResponse{}, err
		}
	}
	return toUserResponse(*user, isSubscribed), nil
}

func (s *userService) UpdateAvatar(ctx context.Context, req domain.UpdateAvatarRequest, userID string) (domain.UpdateAvatarResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.UpdateAvatarResponse{}, err
	}

	data, contentType, err := utils.DecodeBase64Image(req.Avatar)
	if err != nil {
		return domain.UpdateAvatarResponse{}, domain.ErrAvatarMissing
	}

	objectKey, err := s.s3.UploadBytes("avatars", data, contentType)
	if err != nil {
		return domain.UpdateAvatarResponse{}, err
	}

	user.AvatarURL = s.s3.GetPublicLinkKey(objectKey)
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return domain.UpdateAvatarResponse{}, err
	}

	return domain.UpdateAvatarResponse{Avatar: user.AvatarURL}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID string) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	user.AvatarURL = ""
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) SendVerificationEmail(ctx context.Context, req domain.SendVerifyEmailRequest) error {
	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err != nil {
		return err
	}
	return s.sendVerificationMail(req.Email)
}

func (s *userService) sendVerificationMail(email string) error {
	token, err := s.jwtService.GenerateTokenForgetPassword(
		map[string]any{"email": email},
		time.Hour*24,
	)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/v1/users/verify?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>Welcome to Foodgram!</p><p>Please verify your email by following <a href=%q>this link</a>.</p>",
		link,
	)
	return mailing.SendMail(email, "Verify your Foodgram account", body)
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(token)
	if err != nil {
		return err
	}

	email, ok := claims["email"].(string)
	if !ok {
		return domain.ErrTokenInvalid
	}

	user, err := s.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	user.IsVerified = true
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err != nil {
		return err
	}

	token, err := s.jwtService.GenerateTokenForgetPassword(
		map[string]any{"email": req.Email},
		time.Minute*30,
	)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>You requested a password reset.</p><p>Follow <a href=%q>this link</a> to set a new password. The link expires in 30 minutes.</p>",
		link,
	)
	return mailing.SendMail(req.Email, "Reset your Foodgram password", body)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return err
	}

	email, ok := claims["email"].(string)
	if !ok {
		return domain.ErrTokenInvalid
	}

	user, err := s.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashed)
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) Subscribe(ctx context.Context, userID, authorID string, recipesLimit int) (domain.SubscriptionResponse, error) {
	if userID == authorID {
		return domain.SubscriptionResponse{}, domain.ErrSelfFollow
	}

	author, err := s.userRepository.GetUserByID(ctx, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	following, err := s.userRepository.IsFollowing(ctx, userID, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if following {
		return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.SubscriptionResponse{}, domain.ErrParseUUID
	}

	follow := entities.Follow{
		ID:        uuid.New(),
		UserID:    userUUID,
		AuthorID:  author.ID,
		CreatedAt: time.Now(),
	}

	if err := s.userRepository.CreateFollow(ctx, &follow); err != nil {
		// The unique constraint is the final authority under
		// concurrent duplicate requests.
		if utils.IsUniqueViolation(err) {
			return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
		}
		return domain.SubscriptionResponse{}, err
	}

	return s.toSubscriptionResponse(ctx, *author, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID string) error {
	if _, err := s.userRepository.GetUserByID(ctx, authorID); err != nil {
		return err
	}

	deleted, err := s.userRepository.DeleteFollow(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (s *userService) GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	authors, count, err := s.userRepository.GetSubscriptions(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]domain.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		sub, err := s.toSubscriptionResponse(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, sub)
	}
	return res, count, nil
}

func (s *userService) toSubscriptionResponse(ctx context.Context, author entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipes, err := s.userRepository.GetRecipesByAuthor(ctx, author.ID.String(), recipesLimit)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	recipesCount, err := s.userRepository.CountRecipesByAuthor(ctx, author.ID.String())
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	shortRecipes := make([]domain.RecipeShortResponse, 0, len(recipes))
	for _, r := range recipes {
		shortRecipes = append(shortRecipes, domain.RecipeShortResponse{
			ID:          r.ID.String(),
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}

	return domain.SubscriptionResponse{
		UserResponse: toUserResponse(author, true),
		Recipes:      shortRecipes,
		RecipesCount: recipesCount,
	}, nil
}

func toUserResponse(user entities.User, isSubscribed bool) domain.UserResponse {
	return domain.UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
		Avatar:       user.AvatarURL,
	}
}
