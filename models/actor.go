package models

// Actor is the authenticated operator performing a call, as handed out by the authentication collaborator.
type Actor struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName"`
}
