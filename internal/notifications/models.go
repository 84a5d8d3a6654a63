package notifications

import "time"

type Type string

const (
	TypeApplicationStatus   Type = "application_status"
	TypeApplicationReceived Type = "application_received"
	TypeJobClosed           Type = "job_closed"
	TypeSystem              Type = "system"
)

// Notification is one row in a user's in-app inbox. Delivery is the insert
// itself: there is no push, email, or retry behind it.
type Notification struct {
	ID        string            `bson:"_id,omitempty" json:"id"`
	UserID    string            `bson:"user_id" json:"userId"`
	Type      Type              `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Message   string            `bson:"message" json:"message"`
	LinkURL   string            `bson:"link_url,omitempty" json:"linkUrl,omitempty"`
	Metadata  map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Read      bool              `bson:"read" json:"read"`
	ReadAt    *time.Time        `bson:"read_at,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time         `bson:"created_at" json:"createdAt"`
}
