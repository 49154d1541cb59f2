// Package router mounts the API route groups on a gin engine.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar is anything that can add its routes to a gin group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them under /api/<version> with the
// API-wide middleware. Routes added straight to the engine (health,
// swagger) bypass that middleware.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion sets the version segment, "v1" by default
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// Setup mounts every registrar. Call it once, after all Register calls.
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath(), r.middleware...)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

// Route is one method and path relative to the API base
type Route struct {
	Group  string
	Method string
	Path   string
}

// Routes lists what Setup mounts, for the startup log.
func (r *Router) Routes() []Route {
	var out []Route
	for _, reg := range r.registrars {
		if g, ok := reg.(*DomainGroup); ok {
			out = g.appendRoutes(out, "")
		}
	}
	return out
}

// DomainGroup is one area of the API (auth, cart, admin ...). Its
// middleware also wraps its subgroups.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []groupRoute
	subgroups  []*DomainGroup
}

type groupRoute struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Name() string   { return dg.name }
func (dg *DomainGroup) Prefix() string { return dg.prefix }

func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle adds a route; the verb helpers below call it.
func (dg *DomainGroup) Handle(method, relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, groupRoute{method: method, path: relPath, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, p, h...)
}

func (dg *DomainGroup) POST(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, p, h...)
}

func (dg *DomainGroup) PUT(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, p, h...)
}

func (dg *DomainGroup) PATCH(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, p, h...)
}

func (dg *DomainGroup) DELETE(p string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, p, h...)
}

// Group nests a subgroup under this group's prefix and middleware.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group(dg.prefix, dg.middleware...)
	for _, rt := range dg.routes {
		g.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, sub := range dg.subgroups {
		sub.RegisterRoutes(g)
	}
}

func (dg *DomainGroup) appendRoutes(out []Route, parent string) []Route {
	base := parent + dg.prefix
	for _, rt := range dg.routes {
		p := base + rt.path
		if p == "" {
			p = "/"
		}
		out = append(out, Route{Group: dg.name, Method: rt.method, Path: path.Clean(p)})
	}
	for _, sub := range dg.subgroups {
		out = sub.appendRoutes(out, base)
	}
	return out
}
