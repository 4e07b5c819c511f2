package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Name         *string   `json:"name"`
	Bio          *string   `json:"bio"`
	AvatarURL    *string   `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is keyed by the sha256 of the issued token string.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uint      `gorm:"index;not null"      json:"user_id"`
	ExpiresAt time.Time `gorm:"index;not null"      json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

type Trip struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"not null"                 json:"title"`
	Description *string    `json:"description"`
	Destination string     `gorm:"not null"                 json:"destination"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	BudgetTotal *float64   `gorm:"type:numeric(10,2)"       json:"budget_total"`
	CreatorID   uint       `gorm:"index;not null"           json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleMember    Role = "member"
	RoleViewer    Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOrganizer, RoleMember, RoleViewer:
		return true
	}
	return false
}

type TripMember struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"                 json:"id"`
	TripID   uint      `gorm:"not null;uniqueIndex:idx_trip_member_user" json:"trip_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_trip_member_user;index" json:"user_id"`
	Role     Role      `gorm:"type:varchar(16);not null;default:member" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime"                           json:"joined_at"`
}

type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Content   string    `gorm:"type:text;not null"       json:"content"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	TripID    uint      `gorm:"index;not null"           json:"trip_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Content   string    `gorm:"type:text;not null"       json:"content"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	TripID    uint      `gorm:"index;not null"           json:"trip_id"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every table in dependency order.
func All() []any {
	return []any{&User{}, &RefreshToken{}, &Trip{}, &TripMember{}, &Message{}, &Comment{}}
}
