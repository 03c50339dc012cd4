package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts routes on a gin router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouteInfo describes one mounted route
type RouteInfo struct {
	Group  string
	Method string
	Path   string
}

type mount struct {
	base      string
	registrar RouteRegistrar
}

// Router collects route registrars and mounts them on an engine. The webhook
// lives at the engine root because its path is configured at the bank-feed
// provider; everything operator facing is versioned under /api/<version>.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	mounts     []mount
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of /api/<version>
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a Router for engine, versioned v1 unless overridden
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// APIBase returns the prefix of versioned routes
func (r *Router) APIBase() string {
	return "/api/" + r.apiVersion
}

// Register mounts registrar under the versioned API prefix
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.mounts = append(r.mounts, mount{base: r.APIBase(), registrar: registrar})
	return r
}

// RegisterRoot mounts registrar at the engine root
func (r *Router) RegisterRoot(registrar RouteRegistrar) *Router {
	r.mounts = append(r.mounts, mount{base: "/", registrar: registrar})
	return r
}

// Setup registers every mount with the engine, in registration order
func (r *Router) Setup() {
	for _, m := range r.mounts {
		m.registrar.RegisterRoutes(r.engine.Group(m.base))
	}
}

// Routes lists the routes of all DomainGroup mounts with their full paths
func (r *Router) Routes() []RouteInfo {
	var out []RouteInfo
	for _, m := range r.mounts {
		if g, ok := m.registrar.(*DomainGroup); ok {
			out = append(out, g.routeInfo(m.base)...)
		}
	}
	return out
}

// DomainGroup is a declarative route group: routes and middleware are
// recorded first and attached to gin when the group is mounted.
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a group named name under prefix
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to the group and its subgroups
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// Group creates a subgroup that inherits this group's prefix and middleware
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, sub := range dg.subgroups {
		sub.RegisterRoutes(group)
	}
}

func (dg *DomainGroup) routeInfo(base string) []RouteInfo {
	base = path.Join(base, dg.prefix)
	out := make([]RouteInfo, 0, len(dg.routes))
	for _, route := range dg.routes {
		out = append(out, RouteInfo{Group: dg.name, Method: route.method, Path: path.Join(base, route.path)})
	}
	for _, sub := range dg.subgroups {
		out = append(out, sub.routeInfo(base)...)
	}
	return out
}

// Name returns the group name
func (dg *DomainGroup) Name() string { return dg.name }

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string { return dg.prefix }
