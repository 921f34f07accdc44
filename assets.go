package gitpress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	maxImageWidth = 1600
)

// handleAdminUpload accepts a multipart image, downscales oversized
// JPEG/PNG uploads, and commits the bytes under a freshly generated asset
// name. The generated name is what keeps uploads collision-free; the
// repository writes exactly the name it is given.
func (a *App) handleAdminUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no file uploaded"})
	}
	if file.Size > maxUploadSize {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file exceeds 10MB limit"})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "only image files are allowed"})
	}

	data, err = downscaleImage(data, filepath.Ext(file.Filename))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid image: " + err.Error()})
	}

	name := NewAssetFileName(file.Filename)
	url, err := a.Repo.UploadAsset(c.Request().Context(), name, data)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// downscaleImage re-encodes JPEG and PNG images wider than maxImageWidth.
// Other formats (GIF, WebP, SVG) pass through untouched.
func downscaleImage(data []byte, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
	default:
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxImageWidth {
		return data, nil
	}

	newH := h * maxImageWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
