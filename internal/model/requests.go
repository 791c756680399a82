package model

// CreateMapRequest carries the text fields of a map submission. The
// image files travel alongside it in the multipart body.
type CreateMapRequest struct {
	Title       string `json:"title" validate:"required,min=6,max=45"`
	Description string `json:"description" validate:"required,min=6,max=700"`
	Code        string `json:"code" validate:"required,mapcode"`
	Category    string `json:"category" validate:"required,oneof=Casual Art Challenge"`
}

// UpdateMapRequest is a partial map edit. At least one field must be
// present; unknown fields are rejected at decode time.
type UpdateMapRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=6,max=45"`
	Description *string  `json:"description" validate:"omitempty,min=6,max=700"`
	Category    *string  `json:"category" validate:"omitempty,oneof=Casual Art Challenge"`
	Images      []string `json:"images" validate:"omitempty,dive,min=1"`
}

// Empty reports whether the edit carries no fields at all.
func (r *UpdateMapRequest) Empty() bool {
	return r.Title == nil && r.Description == nil &&
		r.Category == nil && r.Images == nil
}

// UpdateUserRequest is a partial profile edit.
type UpdateUserRequest struct {
	Nickname *string `json:"nickname" validate:"omitempty,min=1,max=30"`
	Status   *string `json:"status" validate:"omitempty,max=200"`
}

// Empty reports whether the edit carries no fields at all.
func (r *UpdateUserRequest) Empty() bool {
	return r.Nickname == nil && r.Status == nil
}

// ListMapsQuery holds the parsed browse-page query string.
type ListMapsQuery struct {
	Category string `validate:"omitempty,oneof=All Casual Art Challenge"`
	Query    string `validate:"omitempty,max=100"`
	Page     int    `validate:"min=1"`
	Sort     string `validate:"omitempty,oneof=dateAdded popularity"`
}
