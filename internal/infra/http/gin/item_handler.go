package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	itemapp "gearshare/internal/app/handlers/item"
	"gearshare/internal/app/queries"
)

type ItemHTTP interface {
	Create(c *gin.Context)
	Search(c *gin.Context)
	Get(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type ItemHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createItemRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	DailyRateCents int64    `json:"daily_rate_cents"`
	PhotoURLs      []string `json:"photo_urls"`
}

func (h ItemHandler) Create(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := itemapp.CreateItemCommand{
		OwnerID:        user.ID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		DailyRateCents: req.DailyRateCents,
		PhotoURLs:      req.PhotoURLs,
	}
	result, err := commands.Dispatch[itemapp.CreateItemCommand, dto.Item](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ItemHandler) Search(c *gin.Context) {
	q := itemapp.SearchItemsQuery{
		OwnerID:  c.Query("owner_id"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	if raw := c.Query("max_daily_rate_cents"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			q.MaxDailyRateCents = v
		}
	}
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if p, ok := currentPrincipal(c); ok && q.OwnerID == p.ID {
		// Owners see their suspended listings in their own dashboard.
		q.IncludeSuspended = true
	}
	result, err := queries.Ask[itemapp.SearchItemsQuery, []dto.Item](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h ItemHandler) Get(c *gin.Context) {
	q := itemapp.GetItemQuery{ItemID: c.Param("id")}
	result, err := queries.Ask[itemapp.GetItemQuery, dto.Item](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ItemHandler) UploadPhoto(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()
	cmd := itemapp.UploadPhotoCommand{
		UserID:      user.ID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	result, err := commands.Dispatch[itemapp.UploadPhotoCommand, *itemapp.UploadPhotoResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ItemHTTP = ItemHandler{}
