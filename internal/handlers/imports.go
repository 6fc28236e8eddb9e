package handlers

import (
	"net/http"
	"os"

	"cobranzas/internal/importer"
	"cobranzas/internal/storage"

	"github.com/gin-gonic/gin"
)

// margen para los demás campos del formulario multipart
const formOverhead = 1 << 20

// ImportClients: POST /api/importar/clientes (campo "archivo").
func (h *Handler) ImportClients(c *gin.Context) {
	h.importUpload(c, importer.KindClients, "Error al importar clientes")
}

// ImportAdvisors: POST /api/importar/asesores (campo "archivo").
func (h *Handler) ImportAdvisors(c *gin.Context) {
	h.importUpload(c, importer.KindAdvisors, "Error al importar asesores")
}

func (h *Handler) importUpload(c *gin.Context, kind importer.Kind, summary string) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxImportSize+formOverhead)

	fh, err := c.FormFile("archivo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No se proporcionó ningún archivo", err.Error())
		return
	}
	if !importer.SupportedExtension(fh.Filename) {
		respondError(c, http.StatusBadRequest, importer.ErrUnsupportedFormat.Error(), fh.Filename)
		return
	}

	path, err := h.store.SaveTemp(fh)
	if err != nil {
		h.fail(c, summary, err)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.log.Error(err, "no se pudo borrar el archivo temporal "+path)
		}
	}()

	db, ok := h.db(c)
	if !ok {
		return
	}

	res, err := importer.ImportFile(c.Request.Context(), db, kind, path, sessionUserID(c))
	if err != nil {
		h.fail(c, summary, err)
		return
	}

	h.log.Infof("importación de %s: registros=%d procesados=%d omitidos=%d (%s)",
		kind, res.Registros, res.Procesados, res.Omitidos, fh.Filename)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    importer.SuccessMessage,
		"registros":  res.Registros,
		"procesados": res.Procesados,
		"omitidos":   res.Omitidos,
	})
}
