package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	disputeapp "gearshare/internal/app/handlers/dispute"
	"gearshare/internal/app/queries"
	domaindispute "gearshare/internal/domain/dispute"
)

type DisputeHTTP interface {
	Open(c *gin.Context)
	StartReview(c *gin.Context)
	Resolve(c *gin.Context)
	Close(c *gin.Context)
	AddMessage(c *gin.Context)
	ListByRental(c *gin.Context)
	Get(c *gin.Context)
}

type DisputeHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type openDisputeRequest struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	PhotoURLs   []string `json:"photo_urls"`
	ReportRefs  []string `json:"report_refs"`
}

func (h DisputeHandler) Open(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req openDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := disputeapp.OpenDisputeCommand{
		RentalID:        c.Param("id"),
		RaisedBy:        user.ID,
		Type:            domaindispute.Type(req.Type),
		Description:     req.Description,
		PhotoURLs:       req.PhotoURLs,
		ReportRefs:      req.ReportRefs,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[disputeapp.OpenDisputeCommand, *dto.Dispute](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h DisputeHandler) StartReview(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := disputeapp.StartReviewCommand{DisputeID: c.Param("id"), ModeratorID: user.ID}
	result, err := commands.Dispatch[disputeapp.StartReviewCommand, dto.Dispute](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type resolveDisputeRequest struct {
	Outcome           string `json:"outcome"`
	CompensationCents int64  `json:"compensation_cents"`
}

func (h DisputeHandler) Resolve(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := disputeapp.ResolveDisputeCommand{
		DisputeID:         c.Param("id"),
		ResolverID:        user.ID,
		Outcome:           req.Outcome,
		CompensationCents: req.CompensationCents,
	}
	result, err := commands.Dispatch[disputeapp.ResolveDisputeCommand, dto.Dispute](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h DisputeHandler) Close(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := disputeapp.CloseDisputeCommand{DisputeID: c.Param("id"), ClosedBy: user.ID}
	result, err := commands.Dispatch[disputeapp.CloseDisputeCommand, dto.Dispute](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type addMessageRequest struct {
	Content string `json:"content"`
}

func (h DisputeHandler) AddMessage(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := disputeapp.AddMessageCommand{
		DisputeID: c.Param("id"),
		SenderID:  user.ID,
		Content:   req.Content,
	}
	result, err := commands.Dispatch[disputeapp.AddMessageCommand, dto.Dispute](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h DisputeHandler) ListByRental(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	q := disputeapp.ListDisputesQuery{RentalID: c.Param("id"), UserID: user.ID}
	result, err := queries.Ask[disputeapp.ListDisputesQuery, []dto.Dispute](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disputes": result})
}

func (h DisputeHandler) Get(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	q := disputeapp.GetDisputeQuery{DisputeID: c.Param("id"), UserID: user.ID}
	result, err := queries.Ask[disputeapp.GetDisputeQuery, dto.Dispute](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ DisputeHTTP = DisputeHandler{}
