package transport

import (
	"github.com/ds124wfegd/item-analyzer/internal/service"
)

type ItemHandler struct {
	service         service.AnalyzeService
	maxRequestBytes int64
}

// NewItemHandler limits the whole multipart body to maxRequestBytes; zero
// means no limit.
func NewItemHandler(service service.AnalyzeService, maxRequestBytes int64) *ItemHandler {
	return &ItemHandler{service: service, maxRequestBytes: maxRequestBytes}
}
