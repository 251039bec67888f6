package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	reviewapp "gearshare/internal/app/handlers/review"
	"gearshare/internal/app/queries"
)

type ReviewHTTP interface {
	Submit(c *gin.Context)
	ListByItem(c *gin.Context)
}

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type submitReviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

func (h ReviewHandler) Submit(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reviewapp.SubmitReviewCommand{
		RentalID: c.Param("id"),
		AuthorID: user.ID,
		Rating:   req.Rating,
		Text:     req.Text,
	}
	result, err := commands.Dispatch[reviewapp.SubmitReviewCommand, dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) ListByItem(c *gin.Context) {
	q := reviewapp.ListReviewsQuery{ItemID: c.Param("id")}
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	result, err := queries.Ask[reviewapp.ListReviewsQuery, []dto.Review](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": result})
}

var _ ReviewHTTP = ReviewHandler{}
