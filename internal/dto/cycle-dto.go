package dto

type CreateCycleRequest struct {
	Name        string `json:"name"`
	StartDate   Date   `json:"start_date"`
	EndDate     Date   `json:"end_date"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
}

type UpdateCycleRequest struct {
	Name        *string `json:"name,omitempty"`
	StartDate   *Date   `json:"start_date,omitempty"`
	EndDate     *Date   `json:"end_date,omitempty"`
	Status      *string `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
}
