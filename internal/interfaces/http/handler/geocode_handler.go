package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasancagrigungor/ravla/internal/geocode"
	"github.com/hasancagrigungor/ravla/pkg/logger"
)

type GeocodeHandler struct {
	resolvers       map[string]*geocode.Resolver
	defaultProvider string
	log             logger.Logger
}

func NewGeocodeHandler(resolvers map[string]*geocode.Resolver, defaultProvider string, log logger.Logger) *GeocodeHandler {
	return &GeocodeHandler{
		resolvers:       resolvers,
		defaultProvider: defaultProvider,
		log:             log,
	}
}

// Resolve batch-resolves region pairs through the persistent cache. Cache
// hits cost nothing; misses go to the chosen provider under its rate limit.
func (h *GeocodeHandler) Resolve(c *gin.Context) {
	var req struct {
		Provider string         `json:"provider"`
		Keys     []geocode.Pair `json:"keys" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := req.Provider
	if name == "" {
		name = h.defaultProvider
	}
	resolver, ok := h.resolvers[name]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider", "provider": name})
		return
	}

	result, err := resolver.ResolveAll(c.Request.Context(), req.Keys)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.log.Info("geocode batch done",
		logger.String("provider", name),
		logger.Int("cache_hits", result.CacheHit),
		logger.Int("resolved", result.Resolved),
		logger.Int("unmatched", result.Unmatched),
	)
	c.JSON(http.StatusOK, result)
}
