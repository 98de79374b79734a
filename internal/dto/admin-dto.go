package dto

type CreateAdminRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role" example:"Admin"`
}

// UpdateAdminRequest changes role and/or approval status; nil fields are left alone.
type UpdateAdminRequest struct {
	Role   *string `json:"role,omitempty" example:"SuperAdmin"`
	Status *string `json:"status,omitempty" example:"Approved"`
}
