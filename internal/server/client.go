package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	clientdomain "github.com/watchline/watchline/internal/client/domain"
)

type clientPayload struct {
	Name              string   `json:"name"`
	ContactName       string   `json:"contact_name"`
	ContactPhone      string   `json:"contact_phone"`
	MonthlyRate       string   `json:"monthly_rate"`
	BillingStartDate  string   `json:"billing_start_date"`
	ContractStartDate string   `json:"contract_start_date"`
	ContractEndDate   string   `json:"contract_end_date"`
	SiteIDs           []string `json:"site_ids"`
}

type listClientsQuery struct {
	Page    int    `form:"page,default=1"`
	PerPage int    `form:"per_page,default=20"`
	Search  string `form:"search"`
	SiteID  string `form:"site_id"`
	ZoneID  string `form:"zone_id"`
}

func (s *Server) CreateClient(c *gin.Context) {
	var body clientPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, &ValidationErrors{Code: "invalid_body", Fields: map[string]string{"body": err.Error()}})
		return
	}

	rate, err := parseRate(body.MonthlyRate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	req := clientdomain.CreateClientRequest{
		Name:         body.Name,
		ContactName:  body.ContactName,
		ContactPhone: body.ContactPhone,
		MonthlyRate:  rate,
		SiteIDs:      body.SiteIDs,
	}
	if req.BillingStartDate, err = parseOptionalDate(body.BillingStartDate, "billing_start_date"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.ContractStartDate, err = parseOptionalDate(body.ContractStartDate, "contract_start_date"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.ContractEndDate, err = parseOptionalDate(body.ContractEndDate, "contract_end_date"); err != nil {
		AbortWithError(c, err)
		return
	}

	created, err := s.clientSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Server) ListClients(c *gin.Context) {
	var q listClientsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		AbortWithError(c, &ValidationErrors{Code: "invalid_query", Fields: map[string]string{"query": err.Error()}})
		return
	}

	req := clientdomain.ListClientRequest{
		Search: q.Search,
		SiteID: q.SiteID,
		ZoneID: q.ZoneID,
	}
	req.Page = q.Page
	req.PerPage = q.PerPage

	resp, err := s.clientSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetClientByID(c *gin.Context) {
	resp, err := s.clientSvc.GetByID(c.Request.Context(), clientdomain.GetClientRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type updateClientPayload struct {
	Name              *string  `json:"name"`
	ContactName       *string  `json:"contact_name"`
	ContactPhone      *string  `json:"contact_phone"`
	MonthlyRate       *string  `json:"monthly_rate"`
	BillingStartDate  *string  `json:"billing_start_date"`
	ContractStartDate *string  `json:"contract_start_date"`
	ContractEndDate   *string  `json:"contract_end_date"`
	SiteIDs           []string `json:"site_ids"`
}

func (s *Server) UpdateClient(c *gin.Context) {
	var body updateClientPayload
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, &ValidationErrors{Code: "invalid_body", Fields: map[string]string{"body": err.Error()}})
		return
	}

	req := clientdomain.UpdateClientRequest{
		ID:           c.Param("id"),
		Name:         body.Name,
		ContactName:  body.ContactName,
		ContactPhone: body.ContactPhone,
		SiteIDs:      body.SiteIDs,
	}
	if body.MonthlyRate != nil {
		rate, err := parseRate(*body.MonthlyRate)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		req.MonthlyRate = &rate
	}

	var err error
	if req.BillingStartDate, err = parseOptionalDatePtr(body.BillingStartDate, "billing_start_date"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.ContractStartDate, err = parseOptionalDatePtr(body.ContractStartDate, "contract_start_date"); err != nil {
		AbortWithError(c, err)
		return
	}
	if req.ContractEndDate, err = parseOptionalDatePtr(body.ContractEndDate, "contract_end_date"); err != nil {
		AbortWithError(c, err)
		return
	}

	updated, err := s.clientSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteClient(c *gin.Context) {
	if err := s.clientSvc.Delete(c.Request.Context(), clientdomain.GetClientRequest{ID: c.Param("id")}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseRate(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ValidationErrors{Code: "invalid_rate", Fields: map[string]string{"monthly_rate": "must be a decimal number"}}
	}
	return rate, nil
}

func parseOptionalDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &ValidationErrors{Code: "invalid_date", Fields: map[string]string{field: "must be YYYY-MM-DD or RFC3339"}}
}

func parseOptionalDatePtr(raw *string, field string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return parseOptionalDate(*raw, field)
}
