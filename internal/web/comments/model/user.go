package model

const (
	// GuestID is the id of the identity shown for unknown authors
	GuestID = "guest"
	// FallbackText replaces a comment body that has no text
	FallbackText = "content could not be loaded"
)

// UserReference is the public profile of a comment author
type UserReference struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfilePhoto string `json:"profile_photo"`
}

// GuestIdentity is shown in place of authors that cannot be resolved
var GuestIdentity = UserReference{
	ID:           GuestID,
	Name:         "Anonymous",
	ProfilePhoto: "/comment.png",
}

// IsGuest reports whether u is the guest identity
func (u UserReference) IsGuest() bool {
	return u.ID == GuestID
}
