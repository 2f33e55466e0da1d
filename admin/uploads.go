package admin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"wanderlust/logx"
	"wanderlust/storage"
	"wanderlust/utils"
)

type ImageStore interface {
	Save(ctx context.Context, folder string, data []byte) (*storage.Stored, error)
}

var uploadFolders = map[string]bool{"packages": true, "posts": true, "avatars": true}

type Uploads struct {
	images ImageStore
}

func NewUploads(images ImageStore) *Uploads {
	return &Uploads{images: images}
}

// Upload handles POST /api/admin/uploads with a multipart "file" field and an
// optional "folder" (packages, posts or avatars).
func (u *Uploads) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !requireAdmin(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		failed(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		failed(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageBytes+1))
	if err != nil {
		failed(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	if len(data) > storage.MaxImageBytes {
		failed(w, http.StatusRequestEntityTooLarge, "Image exceeds the 10 MB limit")
		return
	}

	folder := r.FormValue("folder")
	if !uploadFolders[folder] {
		folder = "uploads"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	stored, err := u.images.Save(ctx, folder, data)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		failed(w, http.StatusUnsupportedMediaType, "Only JPEG, PNG and GIF images are accepted")
		return
	}
	if errors.Is(err, storage.ErrImageTooLarge) {
		failed(w, http.StatusRequestEntityTooLarge, "Image dimensions are too large")
		return
	}
	if err != nil {
		logx.FromContext(ctx).Error().Err(err).Str("folder", folder).Msg("upload image")
		failed(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}
	utils.Success(w, http.StatusCreated, utils.M{"url": stored.URL, "thumbUrl": stored.ThumbURL})
}
