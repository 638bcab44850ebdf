package rest

import (
	"strings"

	"github.com/gin-gonic/gin"

	"learnsol-identity/pkg/logger"
)

// RegisterRoutes attaches middlewares and routes to the engine, creating one
// router group per distinct Route.Group.
func RegisterRoutes(engine *gin.Engine, l *logger.Logger, middlewares []Middleware, routes []Route) {
	groups := map[string]*gin.RouterGroup{}
	group := func(name string) *gin.RouterGroup {
		if g, exists := groups[name]; exists {
			return g
		}
		g := engine.Group("/" + strings.Trim(name, "/"))
		groups[name] = g
		return g
	}

	// groups copy the engine chain when created, so global middleware goes first
	for _, m := range middlewares {
		if m.Group == AllGroups {
			engine.Use(m.Handler)
		}
	}
	for _, m := range middlewares {
		if m.Group != AllGroups {
			group(m.Group).Use(m.Handler)
		}
	}

	for _, r := range routes {
		g := group(r.Group)
		handlers := r.Handlers()

		switch r.Method {
		case GET:
			g.GET(r.Path, handlers...)
		case POST:
			g.POST(r.Path, handlers...)
		case PUT:
			g.PUT(r.Path, handlers...)
		case PATCH:
			g.PATCH(r.Path, handlers...)
		case DELETE:
			g.DELETE(r.Path, handlers...)
		default:
			l.Warnf("Unrecognized HTTP method: %s", r.Method)
		}
	}
}
