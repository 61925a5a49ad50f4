package handler

import "net/http"

type StaticHandler struct {
	page []byte
}

func NewStaticHandler(page []byte) *StaticHandler {
	return &StaticHandler{page: page}
}

func (h *StaticHandler) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.page)
}
