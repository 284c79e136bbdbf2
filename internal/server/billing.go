package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/watchline/watchline/internal/billing/domain"
	referencedomain "github.com/watchline/watchline/internal/reference/domain"
)

type reconciliationQuery struct {
	Year    int    `form:"year"`
	Page    int    `form:"page,default=1"`
	PerPage int    `form:"per_page,default=20"`
	Sort    string `form:"sort_field,default=name"`
	Dir     string `form:"sort_direction,default=asc"`
	Search  string `form:"search"`
	SiteID  string `form:"site_id"`
	ZoneID  string `form:"zone_id"`
	Status  string `form:"status,default=all"`
}

type reconciliationPayload struct {
	billingdomain.ReconciliationResponse
	Sites []referencedomain.Site `json:"sites"`
	Zones []referencedomain.Zone `json:"zones"`
}

func (s *Server) GetReconciliation(c *gin.Context) {
	var q reconciliationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		AbortWithError(c, &ValidationErrors{Code: "invalid_query", Fields: map[string]string{"query": err.Error()}})
		return
	}

	ctx := c.Request.Context()
	resp, err := s.billingSvc.Reconcile(ctx, billingdomain.ReconciliationRequest{
		Year:          q.Year,
		Page:          q.Page,
		PerPage:       q.PerPage,
		SortField:     billingdomain.SortField(q.Sort),
		SortDirection: billingdomain.SortDirection(q.Dir),
		Search:        q.Search,
		SiteID:        q.SiteID,
		ZoneID:        q.ZoneID,
		Status:        billingdomain.StatusFilter(q.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sites, err := s.refrepo.ListSites(ctx, s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	zones, err := s.refrepo.ListZones(ctx, s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, reconciliationPayload{
		ReconciliationResponse: resp,
		Sites:                  sites,
		Zones:                  zones,
	})
}

func (s *Server) TogglePayment(c *gin.Context) {
	var req billingdomain.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, &ValidationErrors{Code: "invalid_body", Fields: map[string]string{"body": err.Error()}})
		return
	}

	resp, err := s.billingSvc.TogglePayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
