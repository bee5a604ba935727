package router_helper

import (
	"net/http"
	"path"

	"github.com/julienschmidt/httprouter"
)

// RouteGroup registers handlers under a common path prefix.
type RouteGroup struct {
	router *httprouter.Router
	prefix string
}

func NewRouteGroup(router *httprouter.Router, prefix string) *RouteGroup {
	return &RouteGroup{router: router, prefix: prefix}
}

func (g *RouteGroup) Group(prefix string) *RouteGroup {
	return NewRouteGroup(g.router, path.Join(g.prefix, prefix))
}

func (g *RouteGroup) Handle(method, p string, handle httprouter.Handle) {
	g.router.Handle(method, path.Join(g.prefix, p), handle)
}

func (g *RouteGroup) GET(p string, handle httprouter.Handle) {
	g.Handle(http.MethodGet, p, handle)
}

func (g *RouteGroup) POST(p string, handle httprouter.Handle) {
	g.Handle(http.MethodPost, p, handle)
}
