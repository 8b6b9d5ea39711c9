// internal/models/application.go
package models

// Finance application statuses.
const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusReferred  = "referred"
)
