package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // décodage PNG
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// Configuration des uploads
const (
	MaxFileSize    = 8 * 1024 * 1024
	MaxImageWidth  = 5000
	MaxImageHeight = 5000
)

// Types MIME autorisés pour les images
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// Extensions autorisées
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// FileValidationError représente une erreur de validation de fichier
type FileValidationError struct {
	Message string
}

func (e FileValidationError) Error() string {
	return e.Message
}

// ValidateImageUpload valide un fichier image uploadé
func ValidateImageUpload(fileHeader *multipart.FileHeader, fileData []byte) error {
	if len(fileData) > MaxFileSize {
		return FileValidationError{
			Message: fmt.Sprintf("le fichier est trop volumineux (max %d MB)", MaxFileSize/1024/1024),
		}
	}

	if len(fileData) == 0 {
		return FileValidationError{Message: "le fichier est vide"}
	}

	// Vérifier l'extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return FileValidationError{
			Message: "type de fichier non autorisé. Seuls les fichiers JPG et PNG sont acceptés",
		}
	}

	// Vérifier le type MIME déclaré, s'il est présent
	if contentType := fileHeader.Header.Get("Content-Type"); contentType != "" && !allowedMimeTypes[contentType] {
		return FileValidationError{Message: "type MIME non autorisé"}
	}

	// Vérifier le type réel du fichier via ses magic bytes
	realType, err := detectImageType(fileData)
	if err != nil {
		return FileValidationError{Message: "impossible de détecter le type de fichier"}
	}

	if !extensionMatchesType(ext, realType) {
		return FileValidationError{
			Message: "l'extension du fichier ne correspond pas au contenu réel",
		}
	}

	// Vérifier que l'image se décode et que ses dimensions sont raisonnables
	cfg, _, err := image.DecodeConfig(bytes.NewReader(fileData))
	if err != nil {
		return FileValidationError{Message: "fichier image invalide ou corrompu"}
	}

	if cfg.Width > MaxImageWidth || cfg.Height > MaxImageHeight {
		return FileValidationError{
			Message: fmt.Sprintf("dimensions d'image trop grandes (max %dx%d)", MaxImageWidth, MaxImageHeight),
		}
	}

	return nil
}

// detectImageType détecte le type réel d'une image à partir de ses magic bytes
func detectImageType(data []byte) (string, error) {
	if len(data) < 8 {
		return "", fmt.Errorf("fichier trop petit")
	}

	// PNG magic bytes: 89 50 4E 47 0D 0A 1A 0A
	if bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}) {
		return "image/png", nil
	}

	// JPEG magic bytes: FF D8 FF
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return "image/jpeg", nil
	}

	return "", fmt.Errorf("type de fichier non reconnu")
}

// extensionMatchesType vérifie que l'extension correspond au type détecté
func extensionMatchesType(ext, detected string) bool {
	switch detected {
	case "image/jpeg":
		return ext == ".jpg" || ext == ".jpeg"
	case "image/png":
		return ext == ".png"
	}
	return false
}

// NormalizeOrientation corrige l'orientation EXIF des JPEG avant stockage.
// En cas d'absence de métadonnées ou d'erreur, les données sont renvoyées telles quelles.
func NormalizeOrientation(data []byte) []byte {
	// Seuls les JPEG portent une orientation EXIF
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return data
	}

	exifData, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	orientationTag, err := exifData.Get(exif.Orientation)
	if err != nil {
		return data
	}

	orientation, err := orientationTag.Int(0)
	if err != nil || orientation == 1 {
		return data
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	switch orientation {
	case 2:
		img = flipHorizontal(img)
	case 3:
		img = rotate180(img)
	case 4:
		img = flipVertical(img)
	case 5:
		img = rotate90(flipHorizontal(img))
	case 6:
		img = rotate90(img)
	case 7:
		img = rotate270(flipHorizontal(img))
	case 8:
		img = rotate270(img)
	default:
		return data
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return data
	}

	return buf.Bytes()
}

// flipHorizontal retourne l'image en miroir horizontal
func flipHorizontal(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(bounds.Max.X-1-(x-bounds.Min.X), y, img.At(x, y))
		}
	}
	return dst
}

// flipVertical retourne l'image en miroir vertical
func flipVertical(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x, bounds.Max.Y-1-(y-bounds.Min.Y), img.At(x, y))
		}
	}
	return dst
}

// rotate90 fait pivoter l'image de 90° dans le sens horaire
func rotate90(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dy(), bounds.Dx()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(bounds.Max.Y-1-y, x-bounds.Min.X, img.At(x, y))
		}
	}
	return dst
}

// rotate180 fait pivoter l'image de 180°
func rotate180(img image.Image) image.Image {
	return flipHorizontal(flipVertical(img))
}

// rotate270 fait pivoter l'image de 270° dans le sens horaire
func rotate270(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dy(), bounds.Dx()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(y-bounds.Min.Y, bounds.Max.X-1-x, img.At(x, y))
		}
	}
	return dst
}
