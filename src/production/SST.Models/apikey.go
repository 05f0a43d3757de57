package sstmodels

// APIKey is an issued credential together with the owner it was issued to.
// For admin keys the owner is the fixed sentinel "admin".
type APIKey struct {
	Key    string `json:"key"`
	UserID string `json:"user_id"`
}

// AdminOwner is the owner label recorded for admin credentials.
const AdminOwner = "admin"
