package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	rentalapp "gearshare/internal/app/handlers/rental"
	"gearshare/internal/app/queries"
	domainrental "gearshare/internal/domain/rental"
)

type RentalHTTP interface {
	Submit(c *gin.Context)
	SetStatus(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
}

type RentalHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type submitRentalRequest struct {
	ItemID    string    `json:"item_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

func (h RentalHandler) Submit(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req submitRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := rentalapp.SubmitRentalCommand{
		CommandID:       generateCommandID(),
		ItemID:          req.ItemID,
		RenterID:        user.ID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[rentalapp.SubmitRentalCommand, *rentalapp.SubmitRentalResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h RentalHandler) SetStatus(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := rentalapp.SetRentalStatusCommand{
		RentalID: c.Param("id"),
		ActorID:  user.ID,
		Target:   domainrental.Status(req.Status),
	}
	result, err := commands.Dispatch[rentalapp.SetRentalStatusCommand, *rentalapp.SetRentalStatusResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RentalHandler) List(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	result, err := queries.Ask[rentalapp.ListRentalsQuery, []dto.Rental](c.Request.Context(), h.Queries, rentalapp.ListRentalsQuery{UserID: user.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rentals": result})
}

func (h RentalHandler) Get(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	q := rentalapp.GetRentalQuery{RentalID: c.Param("id"), UserID: user.ID}
	result, err := queries.Ask[rentalapp.GetRentalQuery, dto.Rental](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ RentalHTTP = RentalHandler{}
