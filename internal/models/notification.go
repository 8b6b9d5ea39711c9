package models

// NotificationTemplate is a message with {{placeholder}} fields. Type is
// "application_submitted" for the applicant or "new_application" for the dealership.
type NotificationTemplate struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
