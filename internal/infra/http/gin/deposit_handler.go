package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gearshare/internal/app/dto"
	depositapp "gearshare/internal/app/handlers/deposit"
	"gearshare/internal/app/queries"
)

type DepositHTTP interface {
	GetByRental(c *gin.Context)
}

type DepositHandler struct {
	Queries queries.Bus
}

func (h DepositHandler) GetByRental(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	q := depositapp.GetHoldQuery{RentalID: c.Param("id"), UserID: user.ID}
	result, err := queries.Ask[depositapp.GetHoldQuery, dto.DepositHold](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ DepositHTTP = DepositHandler{}
