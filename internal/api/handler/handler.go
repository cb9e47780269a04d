package handler

import (
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/config"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/gateway"
)

// Handler holds the gateway and the settings the handshake needs.
type Handler struct {
	Gateway *gateway.Gateway
	Cfg     *config.Config
}

func NewHandler(gw *gateway.Gateway, cfg *config.Config) *Handler {
	return &Handler{Gateway: gw, Cfg: cfg}
}
