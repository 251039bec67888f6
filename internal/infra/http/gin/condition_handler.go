package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	conditionapp "gearshare/internal/app/handlers/condition"
	"gearshare/internal/app/queries"
	domaincondition "gearshare/internal/domain/condition"
)

type ConditionHTTP interface {
	Create(c *gin.Context)
	Verify(c *gin.Context)
	List(c *gin.Context)
}

type ConditionHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createReportRequest struct {
	Kind      string   `json:"kind"`
	Notes     string   `json:"notes"`
	PhotoURLs []string `json:"photo_urls"`
	Grade     string   `json:"grade"`
}

func (h ConditionHandler) Create(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := conditionapp.CreateReportCommand{
		RentalID:  c.Param("id"),
		AuthorID:  user.ID,
		Kind:      domaincondition.Kind(req.Kind),
		Notes:     req.Notes,
		PhotoURLs: req.PhotoURLs,
		Grade:     domaincondition.Grade(req.Grade),
	}
	result, err := commands.Dispatch[conditionapp.CreateReportCommand, dto.ConditionReport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ConditionHandler) Verify(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := conditionapp.VerifyReportCommand{
		ReportID:   c.Param("reportId"),
		VerifierID: user.ID,
	}
	result, err := commands.Dispatch[conditionapp.VerifyReportCommand, dto.ConditionReport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ConditionHandler) List(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	q := conditionapp.ListReportsQuery{RentalID: c.Param("id"), UserID: user.ID}
	result, err := queries.Ask[conditionapp.ListReportsQuery, []dto.ConditionReport](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": result})
}

var _ ConditionHTTP = ConditionHandler{}
