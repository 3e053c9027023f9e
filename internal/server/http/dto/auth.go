package dto

// RegisterRequest describes the registration payload.
type RegisterRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=150"`
	Password string `json:"password" form:"password" binding:"required,max=72"`
}

// LoginRequest describes the login payload.
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// FormResponse describes the fields a form expects.
type FormResponse struct {
	Message string   `json:"message"`
	Action  string   `json:"action"`
	Fields  []string `json:"fields"`
}
