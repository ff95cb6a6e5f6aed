package admin

import "github.com/dairydrop/internal/provider"

// Handler serves the back-office endpoints.
type Handler struct {
	*provider.Container
}

// New creates the back-office handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
