package domain

import (
	"errors"
	"os"
	"sort"
	"strings"
)

const (
	RoleUser = "user"
	//ROLE_ADMIN  = "admin"
	//ROLE_MENTOR = "mentor"
)

var (
	MesaageUserNotAllowed       = "user not allowed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	JwtSecret = os.Getenv("JWT_SECRET")

	ErrParseUUID      = errors.New("failed to parse UUID")
	ErrUserNotAllowed = errors.New("user not allowed")
	ErrTokenNotFound  = errors.New("failed to token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// ValidationErrors aggregates every violation found in one payload,
// keyed by field name. All rules run before it is returned, so the
// caller gets the full set in a single pass.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, reason string) {
	v[field] = append(v[field], reason)
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(v[field], "; "))
	}
	return strings.Join(parts, " | ")
}

// RecipeConfig carries the tunable bounds used by the recipe
// composition validator and list pagination.
type RecipeConfig struct {
	MinCookingTime      int
	MaxCookingTime      int
	MinIngredientAmount int
	PageSize            int
}

const (
	DefaultMinCookingTime      = 1
	DefaultMaxCookingTime      = 32000
	DefaultMinIngredientAmount = 1
	DefaultPageSize            = 6
	MaxPageSize                = 100
)
