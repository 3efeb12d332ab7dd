package storage_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/frahmantamala/petirpay/internal"
	"github.com/frahmantamala/petirpay/internal/storage"
	"github.com/frahmantamala/petirpay/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func pngOf(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Images", func() {
	var (
		dir    string
		store  *storage.LocalStore
		images *storage.Images
		ctx    context.Context
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		cfg := internal.StorageConfig{
			UploadDir:      dir,
			PublicBaseURL:  "/uploads/",
			MaxUploadBytes: 256 * 1024,
			MaxImageSide:   64,
		}
		var err error
		store, err = storage.NewLocalStore(cfg, logger.Discard())
		Expect(err).NotTo(HaveOccurred())
		images = storage.NewImages(store, cfg, logger.Discard())
		ctx = context.Background()
	})

	It("stores a png as a bounded jpeg", func() {
		rel, err := images.SaveImage(ctx, storage.FolderPaymentProofs, bytes.NewReader(pngOf(200, 100)))
		Expect(err).NotTo(HaveOccurred())
		Expect(rel).To(HavePrefix(storage.FolderPaymentProofs + "/"))
		Expect(rel).To(HaveSuffix(".jpg"))

		img, err := imaging.Open(filepath.Join(dir, rel))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bounds().Dx()).To(Equal(64))
		Expect(img.Bounds().Dy()).To(Equal(32))
	})

	It("keeps small images at their original size", func() {
		rel, err := images.SaveImage(ctx, storage.FolderCustomerPhotos, bytes.NewReader(pngOf(20, 10)))
		Expect(err).NotTo(HaveOccurred())

		img, err := imaging.Open(filepath.Join(dir, rel))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bounds().Dx()).To(Equal(20))
	})

	It("rejects payloads that are not images", func() {
		_, err := images.SaveImage(ctx, storage.FolderPaymentProofs, strings.NewReader("definitely not a picture"))
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(400))
		Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidFile)))
	})

	It("rejects files above the upload limit", func() {
		big := bytes.Repeat([]byte{0xff}, 256*1024+10)
		_, err := images.SaveImage(ctx, storage.FolderPaymentProofs, bytes.NewReader(big))
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeFileTooLarge)))
	})

	It("deletes stored files and builds public urls", func() {
		rel, err := images.SaveImage(ctx, storage.FolderPaymentMethods, bytes.NewReader(pngOf(8, 8)))
		Expect(err).NotTo(HaveOccurred())
		Expect(images.URL(rel)).To(Equal("/uploads/" + rel))

		Expect(images.Delete(ctx, rel)).To(Succeed())
		_, statErr := os.Stat(filepath.Join(dir, rel))
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("refuses to delete outside the upload dir", func() {
		Expect(store.Delete(ctx, "../../etc/passwd")).To(HaveOccurred())
	})
})
