package public

import "github.com/dairydrop/internal/provider"

// Handler serves the storefront, customer and guest endpoints.
type Handler struct {
	*provider.Container
}

// New creates the storefront handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
