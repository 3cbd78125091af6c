package dto

// RegisterRequest HTTP层用户登记请求
type RegisterRequest struct {
	UserID   string `json:"user_id" binding:"required,max=64" example:"user_1"`
	Username string `json:"username" binding:"max=50" example:"alice"`
}

// UserResponse 用户响应
type UserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
