package item

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/policies"
)

const uploadPhotoKey = "item.upload_photo"

// UploadPhotoCommand stores one photo in the evidence bucket and returns its
// public URL. The URL is then attached to a listing, condition report or
// dispute by the follow-up command.
type UploadPhotoCommand struct {
	UserID      string
	Filename    string
	ContentType string
	Body        io.Reader
}

func (c UploadPhotoCommand) Key() string { return uploadPhotoKey }

type UploadPhotoResult struct {
	URL string `json:"url"`
}

type UploadPhotoHandler struct {
	Store policies.EvidenceStore
}

func (h *UploadPhotoHandler) Handle(ctx context.Context, cmd UploadPhotoCommand) (*UploadPhotoResult, error) {
	if h.Store == nil {
		return nil, fmt.Errorf("photo upload: no evidence store configured")
	}
	key := fmt.Sprintf("photos/%s/%s%s", cmd.UserID, uuid.NewString(), path.Ext(cmd.Filename))
	url, err := h.Store.Upload(ctx, key, cmd.Body, cmd.ContentType)
	if err != nil {
		return nil, err
	}
	return &UploadPhotoResult{URL: url}, nil
}

var _ commands.Handler[UploadPhotoCommand, *UploadPhotoResult] = (*UploadPhotoHandler)(nil)
