package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxVoucherSize = 10 << 20
	MaxImportSize  = 50 << 20

	tempDirName = "temp"
)

var (
	ErrForbidden   = errors.New("Acceso denegado")
	ErrNotFound    = errors.New("Archivo no encontrado")
	ErrTooLarge    = errors.New("El archivo supera el tamaño máximo permitido")
	ErrInvalidType = errors.New("Tipo de archivo no permitido: solo imágenes (jpg, png, gif, webp) o PDF")
)

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var allowedMIME = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
}

// Store guarda los vouchers en Root y las subidas a importar en Root/temp.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, tempDirName), 0o755); err != nil {
		return nil, fmt.Errorf("no se pudo crear %s: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string    { return s.root }
func (s *Store) TempDir() string { return filepath.Join(s.root, tempDirName) }

// ContentType devuelve el tipo MIME por extensión o application/octet-stream.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// SaveVoucher valida extensión, contenido y tamaño, y guarda el archivo
// con un nombre <uuid><ext>. Devuelve el nombre guardado.
func (s *Store) SaveVoucher(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxVoucherSize {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := contentTypes[ext]; !ok {
		return "", ErrInvalidType
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if !allowedMIME[sniff(head[:n])] {
		return "", ErrInvalidType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	if err := writeFile(filepath.Join(s.root, name), src, MaxVoucherSize); err != nil {
		return "", err
	}
	return name, nil
}

// SaveTemp copia una subida a la carpeta temporal y devuelve la ruta completa.
func (s *Store) SaveTemp(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImportSize {
		return "", ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(s.TempDir(), uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := writeFile(path, src, MaxImportSize); err != nil {
		return "", err
	}
	return path, nil
}

func writeFile(path string, src io.Reader, limit int64) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}

	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// Remove borra un voucher; un nombre vacío o inexistente no es error.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	path, err := s.Resolve(name)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Resolve convierte un nombre relativo en ruta absoluta dentro de Root.
// ErrForbidden si escapa de Root o apunta a la carpeta temporal,
// ErrNotFound si no existe.
func (s *Store) Resolve(name string) (string, error) {
	clean := strings.TrimLeft(filepath.FromSlash(name), `/\`)
	if clean == "" {
		return "", ErrNotFound
	}

	full, err := filepath.Abs(filepath.Join(s.root, clean))
	if err != nil {
		return "", ErrForbidden
	}
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrForbidden
	}
	if rel == tempDirName || strings.HasPrefix(rel, tempDirName+string(filepath.Separator)) {
		return "", ErrForbidden
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return full, nil
}

// Contains indica si el nombre apunta a un voucher existente dentro de Root.
func (s *Store) Contains(name string) bool {
	_, err := s.Resolve(name)
	return err == nil
}

type File struct {
	Name    string
	Path    string
	ModTime time.Time
}

// Vouchers lista los archivos del directorio raíz (sin la carpeta temporal).
func (s *Store) Vouchers() ([]File, error) {
	return listFiles(s.root)
}

func (s *Store) TempFiles() ([]File, error) {
	return listFiles(s.TempDir())
}

func listFiles(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var files []File
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

func sniff(head []byte) string {
	ct := http.DetectContentType(head)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
