package models

// Identity is the signed-in user as reported by the auth provider. A nil
// *Identity means nobody is signed in.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Profile is the user profile returned by an OAuth provider after sign-in.
type Profile struct {
	ProviderID string `json:"provider_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatar_url"`
}
