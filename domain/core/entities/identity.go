package entities

import "socialhub/domain/core/valueobjects"

// Identity is the public profile summary of an account. Profiles are owned by
// the external identity store; this service only reads and caches them.
type Identity struct {
	ID        valueobjects.IdentityID `json:"id" dynamodbav:"ID"`
	Username  string                  `json:"username" dynamodbav:"Username"`
	FirstName string                  `json:"firstName" dynamodbav:"FirstName"`
	LastName  string                  `json:"lastName" dynamodbav:"LastName"`
}

// Summary returns the sender projection attached to notifications
func (i Identity) Summary() IdentitySummary {
	return IdentitySummary{
		ID:        i.ID,
		Username:  i.Username,
		FirstName: i.FirstName,
		LastName:  i.LastName,
	}
}

// IdentitySummary is the {id, username, firstName, lastName} projection
type IdentitySummary struct {
	ID        valueobjects.IdentityID `json:"id"`
	Username  string                  `json:"username"`
	FirstName string                  `json:"firstName"`
	LastName  string                  `json:"lastName"`
}
