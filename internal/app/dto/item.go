package dto

import (
	"time"

	domainitem "gearshare/internal/domain/item"
)

type Item struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category,omitempty"`
	DailyRateCents int64     `json:"daily_rate_cents"`
	PhotoURLs      []string  `json:"photo_urls,omitempty"`
	Suspended      bool      `json:"suspended"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func MapItem(it *domainitem.Item) Item {
	return Item{
		ID:             string(it.ID),
		OwnerID:        it.OwnerID,
		Title:          it.Title,
		Description:    it.Description,
		Category:       it.Category,
		DailyRateCents: it.DailyRateCents,
		PhotoURLs:      append([]string(nil), it.PhotoURLs...),
		Suspended:      it.Suspended,
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}

func MapItems(items []*domainitem.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, MapItem(it))
	}
	return out
}
