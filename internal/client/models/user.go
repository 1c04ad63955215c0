// Package models defines client-side data models used by the moviekeeper CLI.
package models

// User is a row of the local users table. Address and Phone hold Crypto
// Guard ciphertext; they are never stored in clear.
type User struct {
	UserID     string
	Name       string
	Email      string
	LoginTime  *string
	LogoutTime *string
	Address    string
	Phone      string
	Image      string
}

// HasOpenSession reports whether the latest login has no matching logout.
func (u *User) HasOpenSession() bool {
	return u.LoginTime != nil && u.LogoutTime == nil
}

// UserPatch is a partial update of a user. A nil field keeps the stored
// value, a pointer to "" clears it. Email is only applied while the stored
// email is still empty.
type UserPatch struct {
	Name    *string
	Email   *string
	Address *string
	Phone   *string
	Image   *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Address == nil && p.Phone == nil && p.Image == nil
}

// Profile is the decrypted view of a user handed to the UI.
type Profile struct {
	UserID     string
	Name       string
	Email      string
	Address    string
	Phone      string
	Image      string
	LoginTime  string
	LogoutTime string
}

// Identity is what the identity provider returns after sign-in.
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
	AvatarURL   string
	AccessToken string
}

// Ptr returns a pointer to s, for building patches.
func Ptr(s string) *string {
	return &s
}
