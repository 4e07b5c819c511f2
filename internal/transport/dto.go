package transport

import (
	"fmt"
	"time"

	"github.com/Skotchmaster/travel_app/internal/models"
)

const DateLayout = "2006-01-02"

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	User         *models.User `json:"user,omitempty"`
}

type UpdateProfileRequest struct {
	Email     *string `json:"email"`
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

type TripRequest struct {
	Title       *string  `json:"title"`
	Destination *string  `json:"destination"`
	Description *string  `json:"description"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	BudgetTotal *float64 `json:"budget_total"`
}

type InviteRequest struct {
	UserID uint `json:"user_id"`
}

type RoleRequest struct {
	Role models.Role `json:"role"`
}

type ContentRequest struct {
	Content string `json:"content"`
}

// ParseDate reads an optional YYYY-MM-DD date.
func ParseDate(field string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, *v)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date in YYYY-MM-DD format", field)
	}
	return &t, nil
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
