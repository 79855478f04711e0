package dto

type CreateCustomerRequest struct {
	Name  string `json:"name"  validate:"required,min=1,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

type UpdateCustomerRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

type CustomerFilter struct {
	Search string `json:"search"` // matches name, email or phone
}
