package storage

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/frahmantamala/petirpay/internal"
)

const (
	FolderPaymentProofs  = "payment-proofs"
	FolderCustomerPhotos = "customer-photos"
	FolderPaymentMethods = "payment-methods"
	defaultJPEGQuality   = 85
)

// Images normalizes uploaded pictures to bounded JPEGs before storing them.
type Images struct {
	store    FileStore
	maxBytes int64
	maxSide  int
	logger   *slog.Logger
}

func NewImages(store FileStore, cfg internal.StorageConfig, logger *slog.Logger) *Images {
	return &Images{
		store:    store,
		maxBytes: cfg.MaxUploadBytes,
		maxSide:  cfg.MaxImageSide,
		logger:   logger,
	}
}

// SaveImage reads at most maxBytes, decodes a jpeg or png, shrinks it to fit
// maxSide and stores it as JPEG. Returns the store-relative path.
func (i *Images) SaveImage(ctx context.Context, folder string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, i.maxBytes+1))
	if err != nil {
		return "", internal.NewStorageError("failed to read upload", err)
	}
	if int64(len(data)) > i.maxBytes {
		return "", internal.NewValidationFieldError("file", "file exceeds the maximum upload size", internal.ErrCodeFileTooLarge)
	}
	if len(data) == 0 {
		return "", internal.NewValidationFieldError("file", "file is empty", internal.ErrCodeInvalidFile)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		i.logger.Warn("rejected upload: not a decodable image", "folder", folder, "error", err)
		return "", internal.NewValidationFieldError("file", "file must be a JPEG or PNG image", internal.ErrCodeInvalidFile)
	}

	b := img.Bounds()
	if i.maxSide > 0 && (b.Dx() > i.maxSide || b.Dy() > i.maxSide) {
		img = imaging.Fit(img, i.maxSide, i.maxSide, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(defaultJPEGQuality)); err != nil {
		return "", internal.NewStorageError("failed to encode image", err)
	}

	rel, err := i.store.Save(ctx, folder, UniqueName("image.jpg"), &out)
	if err != nil {
		return "", err
	}

	i.logger.Info("image saved", "folder", folder, "path", rel, "source_format", format, "bytes", out.Len())
	return rel, nil
}

func (i *Images) Delete(ctx context.Context, relPath string) error {
	return i.store.Delete(ctx, relPath)
}

func (i *Images) URL(relPath string) string {
	return i.store.URL(relPath)
}
