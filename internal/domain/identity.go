package domain

// Identity is the authenticated caller resolved by the identity provider.
// The zero value means "anonymous".
type Identity struct {
	UserID      string
	Name        string
	DisplayName string
	Email       string
}

// IsAuthenticated reports whether the identity carries a user ID
func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

// DisplayNameOr returns displayName when set, otherwise name, otherwise "Unknown"
func DisplayNameOr(displayName *string, name string) string {
	if displayName != nil && *displayName != "" {
		return *displayName
	}
	if name != "" {
		return name
	}
	return "Unknown"
}
