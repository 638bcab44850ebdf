package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"learnsol-identity/internal/app/audit"
	"learnsol-identity/internal/app/binding"
	"learnsol-identity/internal/app/gateway"
	"learnsol-identity/internal/app/tokens"
	"learnsol-identity/internal/app/walletaddr"
	"learnsol-identity/pkg/logger"
)

type AuthHandler struct {
	service  *binding.Service
	gateway  *gateway.Gateway
	verifier gateway.TokenVerifier
	audit    audit.Service
	cookie   gateway.SessionCookie
	logger   *logger.Logger
}

type Option func(*AuthHandler)

func WithAuditService(s audit.Service) Option {
	return func(h *AuthHandler) { h.audit = s }
}

func WithSessionCookie(c gateway.SessionCookie) Option {
	return func(h *AuthHandler) { h.cookie = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(h *AuthHandler) { h.logger = l }
}

func NewAuthHandler(service *binding.Service, gw *gateway.Gateway, verifier gateway.TokenVerifier, opts ...Option) *AuthHandler {
	h := &AuthHandler{
		service:  service,
		gateway:  gw,
		verifier: verifier,
		cookie:   gateway.SessionCookie{Name: gateway.DefaultCookieName, Secure: true},
		logger:   logger.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type NonceRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type BindWalletRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
}

type SessionRequest struct {
	Token string `json:"token"`
}

// RequestNonce godoc
// @Summary      Issue a wallet binding challenge
// @Description  Stores a fresh nonce as the wallet's only pending challenge and returns it for signing
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      NonceRequest  true  "Wallet to bind"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/nonce [post]
func (h *AuthHandler) RequestNonce(c *gin.Context) {
	identity, ok := gateway.IdentityFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req NonceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.WalletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress is required"})
		return
	}

	nonce, err := h.service.RequestNonce(c.Request.Context(), identity.Subject, req.WalletAddress)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

// BindWallet godoc
// @Summary      Bind a wallet to the caller
// @Description  Verifies the wallet's signature over its pending nonce and records the binding
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      BindWalletRequest  true  "Wallet and base58 signature of the nonce"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/bind-wallet [post]
func (h *AuthHandler) BindWallet(c *gin.Context) {
	identity, ok := gateway.IdentityFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req BindWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.WalletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress is required"})
		return
	}

	if err := h.service.BindWallet(c.Request.Context(), identity.Subject, req.WalletAddress, req.Signature); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bound": true})
}

// Verify godoc
// @Summary      Verify the caller's identity token
// @Description  Reads the token from the Authorization header or the web3auth_token cookie
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	identity := h.gateway.Authenticate(c.Request)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false, "error": "Invalid token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          userView(identity),
		"expires":       expiresView(identity.ExpiresAt),
	})
}

// CreateSession godoc
// @Summary      Start a cookie session
// @Description  Verifies the token and stores it in the httpOnly web3auth_token cookie
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      SessionRequest  true  "Identity token"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]interface{}
// @Router       /auth/session [post]
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false, "error": "Invalid token"})
		return
	}

	h.cookie.Set(c.Writer, req.Token)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"expires":       expiresView(identity.ExpiresAt),
	})
}

// Logout godoc
// @Summary      End the cookie session
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// Wallet godoc
// @Summary      Resolve the caller's wallet address
// @Description  Read-only lookup. An explicit walletAddress is accepted for display and reported as non-authoritative unless the caller has bound it.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Param        walletAddress  query     string  false  "Wallet address to look up"
// @Success      200            {object}  map[string]interface{}
// @Failure      400            {object}  map[string]string
// @Failure      401            {object}  map[string]string
// @Failure      404            {object}  map[string]string
// @Router       /auth/wallet [get]
func (h *AuthHandler) Wallet(c *gin.Context) {
	identity, ok := gateway.IdentityFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	lookup, err := h.service.LookupWallet(c.Request.Context(), identity, c.Query("walletAddress"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"walletAddress": lookup.Address,
		"source":        lookup.Source,
		"authoritative": lookup.Authoritative(),
		"bound":         lookup.Bound,
	})
}

// AuditLog godoc
// @Summary      List the caller's binding events
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (max 200)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   model.AuditEntry
// @Failure      401     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /auth/audit [get]
func (h *AuthHandler) AuditLog(c *gin.Context) {
	identity, ok := gateway.IdentityFromContext(c)
	if !ok {
		unauthorized(c)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.audit.GetEntriesBySubject(c.Request.Context(), identity.Subject, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Health godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, binding.ErrInvalidWalletAddress),
		errors.Is(err, binding.ErrMissingSignature),
		errors.Is(err, binding.ErrInvalidSignature),
		errors.Is(err, binding.ErrNoPendingNonce):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, binding.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
	default:
		h.logger.WithContext(c.Request.Context()).Errorf(err, "%s %s failed", c.Request.Method, c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

func userView(identity *tokens.VerifiedIdentity) gin.H {
	user := gin.H{"subject": identity.Subject}
	for _, claim := range []string{"email", "name", "profileImage", "verifier", "aggregateVerifier"} {
		if v, ok := identity.Claims[claim].(string); ok && v != "" {
			user[claim] = v
		}
	}
	if res, ok := walletaddr.Resolve(identity.Subject, identity.Claims); ok {
		user["walletAddress"] = res.Address
		user["walletSource"] = res.Source
	}
	return user
}

func expiresView(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
