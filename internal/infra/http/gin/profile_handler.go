package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gearshare/internal/app/dto"
	gamificationapp "gearshare/internal/app/handlers/gamification"
	"gearshare/internal/app/queries"
)

type ProfileHTTP interface {
	Get(c *gin.Context)
}

type ProfileHandler struct {
	Queries queries.Bus
}

func (h ProfileHandler) Get(c *gin.Context) {
	userID := c.Param("id")
	if userID == "me" {
		p, ok := requireAuth(c)
		if !ok {
			return
		}
		userID = p.ID
	}
	q := gamificationapp.GetProfileQuery{UserID: userID}
	result, err := queries.Ask[gamificationapp.GetProfileQuery, dto.Profile](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ProfileHTTP = ProfileHandler{}
