package domain

import (
	"errors"
)

var (
	MessageSuccessRegister         = "user registered successfully"
	MessageSuccessLogin            = "login success"
	MessageSuccessGetMe            = "success get current user"
	MessageSuccessGetUser          = "success get user"
	MessageSuccessUpdateAvatar     = "avatar updated successfully"
	MessageSuccessDeleteAvatar     = "avatar deleted successfully"
	MessageSuccessSendVerify       = "verification email sent"
	MessageSuccessVerify           = "email verified successfully"
	MessageSuccessForgotPassword   = "password reset email sent"
	MessageSuccessResetPassword    = "password reset successfully"
	MessageSuccessSubscribe        = "subscribed successfully"
	MessageSuccessUnsubscribe      = "unsubscribed successfully"
	MessageSuccessGetSubscriptions = "success get subscriptions"

	MessageFailedRegister         = "failed to register user"
	MessageFailedLogin            = "failed to login"
	MessageFailedGetMe            = "failed to get current user"
	MessageFailedGetUser          = "failed to get user"
	MessageFailedUpdateAvatar     = "failed to update avatar"
	MessageFailedSendVerify       = "failed to send verification email"
	MessageFailedVerify           = "failed to verify email"
	MessageFailedForgotPassword   = "failed to send password reset email"
	MessageFailedResetPassword    = "failed to reset password"
	MessageFailedSubscribe        = "failed to subscribe"
	MessageFailedUnsubscribe      = "failed to unsubscribe"
	MessageFailedGetSubscriptions = "failed to get subscriptions"

	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyUsed    = errors.New("email already in use")
	ErrUsernameAlreadyUsed = errors.New("username already in use")
	ErrInvalidUsername     = errors.New("username may only contain letters, digits and @/./+/-/_")
	ErrCredentialsNotValid = errors.New("email or password is not valid")
	ErrSelfFollow          = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed   = errors.New("already subscribed to this user")
	ErrNotSubscribed       = errors.New("not subscribed to this user")
	ErrAvatarMissing       = errors.New("avatar image is missing")
)

type (
	UserRegisterRequest struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,max=150"`
		FirstName string `json:"first_name" validate:"required,max=150"`
		LastName  string `json:"last_name" validate:"required,max=150"`
		Password  string `json:"password" validate:"required,min=8,max=128"`
	}

	UserLoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	UserLoginResponse struct {
		Token string `json:"token"`
	}

	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		IsSubscribed bool   `json:"is_subscribed"`
		Avatar       string `json:"avatar,omitempty"`
	}

	UpdateAvatarRequest struct {
		Avatar string `json:"avatar" validate:"required"`
	}

	UpdateAvatarResponse struct {
		Avatar string `json:"avatar"`
	}

	SendVerifyEmailRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=8,max=128"`
	}

	// SubscriptionResponse is the followed-author representation:
	// the author plus a short listing of their recipes.
	SubscriptionResponse struct {
		UserResponse
		Recipes      []RecipeShortResponse `json:"recipes"`
		RecipesCount int64                 `json:"recipes_count"`
	}
)
