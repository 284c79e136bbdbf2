package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListSites(c *gin.Context) {
	sites, err := s.refrepo.ListSites(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sites": sites})
}

func (s *Server) ListZones(c *gin.Context) {
	zones, err := s.refrepo.ListZones(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"zones": zones})
}
