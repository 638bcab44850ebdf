package handlers

import (
	"learnsol-identity/pkg/rest"
)

const authGroup = "auth"

// Routes lists every endpoint of the identity service. Routes that act for
// a caller are guarded by the gateway.
func (h *AuthHandler) Routes() []rest.Route {
	requireIdentity := h.gateway.RequireIdentity()

	routes := []rest.Route{
		rest.NewRoute(rest.POST, authGroup, "nonce", h.RequestNonce).With(requireIdentity),
		rest.NewRoute(rest.POST, authGroup, "bind-wallet", h.BindWallet).With(requireIdentity),
		rest.NewRoute(rest.GET, authGroup, "verify", h.Verify),
		rest.NewRoute(rest.POST, authGroup, "session", h.CreateSession),
		rest.NewRoute(rest.POST, authGroup, "logout", h.Logout),
		rest.NewRoute(rest.GET, authGroup, "wallet", h.Wallet).With(requireIdentity),
		rest.NewRoute(rest.GET, "", "health", Health),
	}
	if h.audit != nil {
		routes = append(routes, rest.NewRoute(rest.GET, authGroup, "audit", h.AuditLog).With(requireIdentity))
	}
	return routes
}
