package dto

import (
	"time"

	domaindispute "gearshare/internal/domain/dispute"
)

type Dispute struct {
	ID          string           `json:"id"`
	RentalID    string           `json:"rental_id"`
	ItemID      string           `json:"item_id"`
	RaisedBy    string           `json:"raised_by"`
	RaisedRole  string           `json:"raised_role"`
	Respondent  string           `json:"respondent"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	PhotoURLs   []string         `json:"photo_urls"`
	ReportRefs  []string         `json:"report_refs,omitempty"`
	Status      string           `json:"status"`
	Resolution  *Resolution      `json:"resolution,omitempty"`
	Messages    []DisputeMessage `json:"messages,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type Resolution struct {
	ResolvedBy        string    `json:"resolved_by"`
	ResolvedAt        time.Time `json:"resolved_at"`
	Outcome           string    `json:"outcome"`
	CompensationCents int64     `json:"compensation_cents,omitempty"`
}

type DisputeMessage struct {
	SenderID   string    `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}

func MapDispute(d *domaindispute.Dispute) Dispute {
	out := Dispute{
		ID:          string(d.ID),
		RentalID:    string(d.RentalID),
		ItemID:      string(d.ItemID),
		RaisedBy:    d.RaisedBy,
		RaisedRole:  string(d.RaisedRole),
		Respondent:  d.Respondent,
		Type:        string(d.Type),
		Description: d.Description,
		PhotoURLs:   append([]string(nil), d.PhotoURLs...),
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, ref := range d.ReportRefs {
		out.ReportRefs = append(out.ReportRefs, string(ref))
	}
	if d.Resolution != nil {
		out.Resolution = &Resolution{
			ResolvedBy:        d.Resolution.ResolvedBy,
			ResolvedAt:        d.Resolution.ResolvedAt,
			Outcome:           d.Resolution.Outcome,
			CompensationCents: d.Resolution.CompensationCents,
		}
	}
	for _, m := range d.Messages {
		out.Messages = append(out.Messages, DisputeMessage{
			SenderID:   m.SenderID,
			SenderRole: string(m.SenderRole),
			Content:    m.Content,
			SentAt:     m.SentAt,
		})
	}
	return out
}

func MapDisputes(disputes []*domaindispute.Dispute) []Dispute {
	out := make([]Dispute, 0, len(disputes))
	for _, d := range disputes {
		out = append(out, MapDispute(d))
	}
	return out
}
