package delivery

import "github.com/dairydrop/internal/provider"

// Handler serves the delivery-staff endpoints: login, the daily work
// queue and delivery confirmation.
type Handler struct {
	*provider.Container
}

// New creates the delivery handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
