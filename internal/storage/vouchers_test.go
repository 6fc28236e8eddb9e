package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	pdfBytes = []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n")
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("voucher", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["voucher"][0]
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSaveVoucher(t *testing.T) {
	s := newStore(t)

	name, err := s.SaveVoucher(fileHeader(t, "Recibo.PNG", pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, name, 36+len(".png"))

	data, err := os.ReadFile(filepath.Join(s.Root(), name))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	pdf, err := s.SaveVoucher(fileHeader(t, "recibo.pdf", pdfBytes))
	require.NoError(t, err)
	assert.NotEqual(t, name, pdf)
}

func TestSaveVoucherRejects(t *testing.T) {
	s := newStore(t)

	_, err := s.SaveVoucher(fileHeader(t, "script.exe", pngBytes))
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = s.SaveVoucher(fileHeader(t, "falso.png", []byte("hola, no soy una imagen")))
	assert.ErrorIs(t, err, ErrInvalidType)

	big := append(append([]byte{}, pdfBytes...), bytes.Repeat([]byte("x"), MaxVoucherSize)...)
	_, err = s.SaveVoucher(fileHeader(t, "grande.pdf", big))
	assert.ErrorIs(t, err, ErrTooLarge)

	files, err := s.Vouchers()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolve(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "a.pdf"), pdfBytes, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.TempDir(), "import.xlsx"), []byte("x"), 0o644))

	path, err := s.Resolve("a.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "a.pdf"), path)

	_, err = s.Resolve("/a.pdf")
	assert.NoError(t, err)

	for _, name := range []string{"../secreto.txt", "../../etc/passwd", "sub/../../x", "..", "temp/import.xlsx"} {
		_, err = s.Resolve(name)
		assert.ErrorIs(t, err, ErrForbidden, name)
	}

	_, err = s.Resolve("no-existe.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Resolve("")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, s.Contains("a.pdf"))
	assert.False(t, s.Contains("../a.pdf"))
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	name, err := s.SaveVoucher(fileHeader(t, "r.png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, s.Remove(name))
	assert.False(t, s.Contains(name))
	assert.NoError(t, s.Remove(name))
	assert.NoError(t, s.Remove(""))
	assert.ErrorIs(t, s.Remove("../x"), ErrForbidden)
}

func TestSaveTemp(t *testing.T) {
	s := newStore(t)

	path, err := s.SaveTemp(fileHeader(t, "Padron.XLSX", []byte("contenido")))
	require.NoError(t, err)
	assert.Equal(t, s.TempDir(), filepath.Dir(path))
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	files, err := s.TempFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)

	vouchers, err := s.Vouchers()
	require.NoError(t, err)
	assert.Empty(t, vouchers)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("x.PDF"))
	assert.Equal(t, "image/jpeg", ContentType("x.jpeg"))
	assert.Equal(t, "image/webp", ContentType("x.webp"))
	assert.Equal(t, "application/octet-stream", ContentType("x.txt"))
}
