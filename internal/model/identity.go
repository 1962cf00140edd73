package model

import "strings"

// ExternalIdentity is the profile asserted by an identity provider.
// ID is provider-qualified, e.g. "google|1234".
type ExternalIdentity struct {
	ID         string
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

func ExternalID(provider, subject string) string {
	return provider + "|" + subject
}

// Provider returns the prefix of ID, or "" when ID is unqualified.
func (i *ExternalIdentity) Provider() string {
	provider, _, ok := strings.Cut(i.ID, "|")
	if !ok {
		return ""
	}
	return provider
}
