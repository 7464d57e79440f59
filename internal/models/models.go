package models

import "time"

// User represents an authenticated user resolved from a login session
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       *string   `json:"avatar,omitempty"`
	Provider     string    `json:"provider"`
	Subject      *string   `json:"-"`
	PasswordHash *string   `json:"-"`
	PushToken    *string   `json:"push_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Auth providers
const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// Event represents a party that photos are shared into
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	InviteCode  string    `json:"invite_code"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
	QRCode      string    `json:"qr_code"`
}

// Participation roles
const (
	RoleCreator     = "creator"
	RoleParticipant = "participant"
)

// Participation records that a user joined an event. Event name and invite
// code are denormalized copies taken at join time.
type Participation struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	EventID         string    `json:"event_id"`
	EventName       string    `json:"event_name"`
	EventInviteCode string    `json:"event_invite_code"`
	Role            string    `json:"role"`
	JoinedAt        time.Time `json:"joined_at"`
}

// Comment is embedded inline in an image record, it has no independent
// lifecycle.
type Comment struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar *string   `json:"user_avatar,omitempty"`
}

// Image represents an uploaded photo with its embedded comments and like set.
// Likes is always derived from the cardinality of LikedBy.
type Image struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserAvatar *string   `json:"user_avatar,omitempty"`
	EventID    *string   `json:"event_id,omitempty"`
	Comments   []Comment `json:"comments"`
	Likes      int       `json:"likes"`
	LikedBy    []string  `json:"liked_by"`
}

// NotificationTypeComment is the only notification type currently produced.
const NotificationTypeComment = "comment"

// Notification is addressed to the owner of a photo when someone else
// comments on it. Deletion is a soft flag.
type Notification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserAvatar  *string   `json:"user_avatar,omitempty"`
	ImageID     string    `json:"image_id"`
	ImageURL    string    `json:"image_url"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
	RecipientID string    `json:"recipient_id"`
}
