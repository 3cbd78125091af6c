package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookorder/internal/application/user"
	"github.com/xiebiao/bookorder/internal/interface/http/dto"
	"github.com/xiebiao/bookorder/pkg/response"
)

// UserHandler 用户HTTP处理器
// Handler只负责解析请求、调用应用层、返回响应
type UserHandler struct {
	registerUseCase *appuser.RegisterUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(registerUseCase *appuser.RegisterUseCase) *UserHandler {
	return &UserHandler{registerUseCase: registerUseCase}
}

// Register 用户登记
// @Summary      用户登记
// @Description  登记下单用户(user_id由用户服务分配)
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "用户信息"
// @Success      201 {object} response.Response{data=dto.UserResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "user_id已存在"
// @Router       /api/v1/users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	u, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		UserID:   req.UserID,
		Username: req.Username,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, &dto.UserResponse{UserID: u.UserID, Username: u.Username})
}
