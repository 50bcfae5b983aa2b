package controllers

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nestconnect/backend/models"
)

const (
	maxImageSize  = 5 << 20
	maxImageCount = 10
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadDir resolves the image storage directory, creating it if needed.
func UploadDir() (string, error) {
	dir := os.Getenv("UPLOAD_PATH")
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// UploadImages accepts up to 10 multipart images (jpeg/png/webp, 5MB each)
// and returns their addressable URLs. Property create/update payloads then
// reference these URLs.
func UploadImages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			log.Printf("Invalid multipart form: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		files := r.MultipartForm.File["images"]
		if len(files) == 0 {
			writeError(w, http.StatusBadRequest, "No images provided")
			return
		}
		if len(files) > maxImageCount {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("At most %d images per upload", maxImageCount))
			return
		}

		dir, err := UploadDir()
		if err != nil {
			log.Printf("Upload directory unavailable: %v", err)
			writeError(w, http.StatusInternalServerError, "Error storing images")
			return
		}

		images := make([]models.Image, 0, len(files))
		for _, fh := range files {
			if fh.Size > maxImageSize {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("%s exceeds the 5MB limit", fh.Filename))
				return
			}
			name, err := saveImage(fh, dir)
			if err != nil {
				if uerr, ok := err.(*unsupportedImageError); ok {
					writeError(w, http.StatusBadRequest, uerr.Error())
					return
				}
				log.Printf("Error storing image %s: %v", fh.Filename, err)
				writeError(w, http.StatusInternalServerError, "Error storing images")
				return
			}
			images = append(images, models.Image{URL: "/uploads/" + name})
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Images uploaded successfully",
			"images":  images,
		})
	}
}

type unsupportedImageError struct {
	filename string
}

func (e *unsupportedImageError) Error() string {
	return fmt.Sprintf("%s is not a supported image type (jpeg, png, webp)", e.filename)
}

func saveImage(fh *multipart.FileHeader, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", &unsupportedImageError{filename: fh.Filename}
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Sniff the real content type; the extension alone is not trusted.
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	if !allowedImageTypes[http.DetectContentType(head[:n])] {
		return "", &unsupportedImageError{filename: fh.Filename}
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	name := fmt.Sprintf("property-%d-%d%s", time.Now().UnixNano(), rand.Intn(1_000_000_000), ext)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}
