package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

type compositeHandler struct {
	handlers []Handler
}

// Compose merges several handlers into one route registrar.
func Compose(handlers ...Handler) Handler {
	return &compositeHandler{handlers: handlers}
}

func (c *compositeHandler) RegisterRoutes(router *httprouter.Router) {
	for _, h := range c.handlers {
		h.RegisterRoutes(router)
	}
}
