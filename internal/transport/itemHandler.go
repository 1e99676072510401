package transport

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const filesField = "files"

func (h *ItemHandler) AnalyzeItem(c *gin.Context) {
	if h.maxRequestBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	}

	images, err := formImages(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Detail: "Request body too large"})
			return
		}
		logrus.WithError(err).Debug("request has no readable multipart form")
	}
	if len(images) == 0 {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Detail: "No files provided"})
		return
	}

	resp, err := h.service.Analyze(c.Request.Context(), images)
	if err != nil {
		status, detail := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logrus.WithError(err).Error("item analysis failed")
		}
		c.JSON(status, entity.ErrorResponse{Detail: detail})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// formImages returns the parts of the "files" field in upload order. Parts
// under other field names are accepted too, ordered by field name.
func formImages(c *gin.Context) ([]entity.RawImage, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	headers := form.File[filesField]
	if len(headers) == 0 {
		fields := make([]string, 0, len(form.File))
		for field := range form.File {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			headers = append(headers, form.File[field]...)
		}
	}

	images := make([]entity.RawImage, 0, len(headers))
	for _, fh := range headers {
		images = append(images, rawImage(fh))
	}
	return images, nil
}

func rawImage(fh *multipart.FileHeader) entity.RawImage {
	return entity.RawImage{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrEmptyInput):
		return http.StatusBadRequest, "No files provided"
	case errors.Is(err, entity.ErrTooManyImages),
		errors.Is(err, entity.ErrImageTooLarge),
		errors.Is(err, entity.ErrCompositeTooLarge),
		errors.Is(err, entity.ErrSchemaValidation),
		errors.Is(err, entity.ErrMalformedResponse):
		return http.StatusBadRequest, capitalize(err.Error())
	default:
		return http.StatusInternalServerError, "An unexpected error occurred: " + err.Error()
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
