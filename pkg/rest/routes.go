package rest

import "github.com/gin-gonic/gin"

type HttpMethod int

const (
	GET HttpMethod = iota
	POST
	PUT
	PATCH
	DELETE
)

func (m HttpMethod) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PUT:
		return "PUT"
	case PATCH:
		return "PATCH"
	case DELETE:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

type Route struct {
	Method      HttpMethod
	Path        string
	HandlerFunc gin.HandlerFunc
	Group       string
	Middlewares []gin.HandlerFunc
}

func NewRoute(method HttpMethod, group, path string, handler gin.HandlerFunc) Route {
	return Route{
		Method:      method,
		Path:        path,
		Group:       group,
		HandlerFunc: handler,
	}
}

// With prepends route-scoped middleware, e.g. an authentication guard.
func (r Route) With(middlewares ...gin.HandlerFunc) Route {
	r.Middlewares = append(append([]gin.HandlerFunc{}, middlewares...), r.Middlewares...)
	return r
}

// Handlers returns the middleware chain followed by the route handler.
func (r Route) Handlers() []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, r.Middlewares...), r.HandlerFunc)
}
