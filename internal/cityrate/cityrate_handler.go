package cityrate

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
	"github.com/xingbinice/wuxianyijin/internal/shared/response"
	"github.com/xingbinice/wuxianyijin/internal/spreadsheet"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form boundaries around the file itself.
const multipartOverhead = 1 << 20

type Handler struct {
	service        Service
	maxUploadBytes int64
}

func NewHandler(service Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.FromError(c, spreadsheet.ErrFileTooLarge(h.maxUploadBytes))
			return
		}
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "no file uploaded", nil)
		return
	}

	rows, err := spreadsheet.ReadMultipart(fh, h.maxUploadBytes)
	if err != nil {
		response.FromError(c, err)
		return
	}

	resp, err := h.service.Import(c.Request.Context(), rows)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	start, end, meta := response.Paginate(len(resp), page, pageSize)

	response.Success(c, http.StatusOK, resp[start:end], &meta)
}
