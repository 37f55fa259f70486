package submissions

type CreateSubmissionRequest struct {
	Title          string  `json:"title" validate:"required,max=255"`
	Description    string  `json:"description" validate:"required"`
	SubmitterEmail string  `json:"submitter_email" validate:"required,email,max=255"`
	Status         *Status `json:"status,omitempty"`
}

type UpdateSubmissionRequest struct {
	Title          *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description    *string `json:"description,omitempty" validate:"omitempty,min=1"`
	SubmitterEmail *string `json:"submitter_email,omitempty" validate:"omitempty,email,max=255"`
	Status         *Status `json:"status,omitempty"`
}

// UpdateStatusRequest leaves enum checking to the service so an unknown
// status is reported as a 400 rather than a field error.
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}
