package dto

import (
	"time"

	domaincondition "gearshare/internal/domain/condition"
)

type ConditionReport struct {
	ID         string     `json:"id"`
	RentalID   string     `json:"rental_id"`
	ItemID     string     `json:"item_id"`
	Kind       string     `json:"kind"`
	AuthorID   string     `json:"author_id"`
	Notes      string     `json:"notes"`
	PhotoURLs  []string   `json:"photo_urls"`
	Grade      string     `json:"grade"`
	VerifiedBy string     `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func MapConditionReport(rep *domaincondition.Report) ConditionReport {
	out := ConditionReport{
		ID:        string(rep.ID),
		RentalID:  string(rep.RentalID),
		ItemID:    string(rep.ItemID),
		Kind:      string(rep.Kind),
		AuthorID:  rep.AuthorID,
		Notes:     rep.Notes,
		PhotoURLs: append([]string(nil), rep.PhotoURLs...),
		Grade:     string(rep.Grade),
		CreatedAt: rep.CreatedAt,
	}
	if rep.Verified() {
		out.VerifiedBy = rep.VerifiedBy
		at := rep.VerifiedAt
		out.VerifiedAt = &at
	}
	return out
}

func MapConditionReports(reports []*domaincondition.Report) []ConditionReport {
	out := make([]ConditionReport, 0, len(reports))
	for _, rep := range reports {
		out = append(out, MapConditionReport(rep))
	}
	return out
}
