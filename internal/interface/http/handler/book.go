package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookorder/internal/application/book"
	"github.com/xiebiao/bookorder/internal/interface/http/dto"
	"github.com/xiebiao/bookorder/pkg/response"
)

// BookHandler 图书HTTP处理器(管理接口)
type BookHandler struct {
	publishBook   *appbook.PublishBookUseCase
	delistBook    *appbook.DelistBookUseCase
	listStockLogs *appbook.ListStockLogsUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishBook *appbook.PublishBookUseCase,
	delistBook *appbook.DelistBookUseCase,
	listStockLogs *appbook.ListStockLogsUseCase,
) *BookHandler {
	return &BookHandler{
		publishBook:   publishBook,
		delistBook:    delistBook,
		listStockLogs: listStockLogs,
	}
}

// PublishBook 图书上架
// @Summary      图书上架
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "book_id已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.PublishBookRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.publishBook.Execute(c.Request.Context(), appbook.PublishBookRequest{
		BookID: req.BookID,
		Title:  req.Title,
		Stock:  req.Stock,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewBookResponse(b))
}

// DelistBook 图书下架(软删除)
// @Summary      图书下架
// @Description  下架后下单和送达都把这本书视为不存在
// @Tags         图书
// @Produce      json
// @Param        book_id path string true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{book_id} [delete]
func (h *BookHandler) DelistBook(c *gin.Context) {
	if err := h.delistBook.Execute(c.Request.Context(), c.Param("book_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListStockLogs 库存流水
// @Summary      库存流水
// @Tags         图书
// @Produce      json
// @Param        book_id path string true "图书ID"
// @Success      200 {object} response.Response{data=[]dto.StockLogResponse}
// @Router       /api/v1/books/{book_id}/stock-logs [get]
func (h *BookHandler) ListStockLogs(c *gin.Context) {
	logs, err := h.listStockLogs.Execute(c.Request.Context(), c.Param("book_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewStockLogListResponse(logs))
}
