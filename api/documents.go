package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"branchscript-editor/parser"
	"branchscript-editor/workspace"
)

// UntitledScheme prefisso dei documenti senza file
const UntitledScheme = "untitled:"

// ============================================
// Document Handlers
// ============================================

// OpenDocumentRequest richiesta di apertura documento
type OpenDocumentRequest struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
	Text    string `json:"text"`
}

// ChangeDocumentRequest richiesta di modifica documento
type ChangeDocumentRequest struct {
	URI     string `json:"uri" binding:"required"`
	Version int    `json:"version"`
	Text    string `json:"text"`
}

// DocumentRequest identifica un documento aperto
type DocumentRequest struct {
	URI string `json:"uri" form:"uri" binding:"required"`
}

// PositionRequest identifica una posizione in un documento aperto
type PositionRequest struct {
	URI       string `json:"uri" binding:"required"`
	Line      int    `json:"line" binding:"min=0"`
	Character int    `json:"character" binding:"min=0"`
}

// DocumentResponse stato di un documento dopo l'analisi
type DocumentResponse struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
	ValidationResult
}

func newDocumentResponse(entry workspace.Entry) DocumentResponse {
	return DocumentResponse{
		URI:              entry.URI,
		Version:          entry.Version,
		ValidationResult: newValidationResult(entry.Result),
	}
}

// listDocuments elenca i documenti aperti
func (s *Server) listDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": s.store.URIs(),
	})
}

// openDocument registra un documento; senza uri ne genera uno "untitled:"
func (s *Server) openDocument(c *gin.Context) {
	var req OpenDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.URI == "" {
		req.URI = UntitledScheme + uuid.NewString()
	}
	s.store.Open(req.URI, req.Version, req.Text)

	entry, _ := s.store.Get(req.URI)
	c.JSON(http.StatusOK, newDocumentResponse(entry))
}

// changeDocument sostituisce il testo di un documento aperto
func (s *Server) changeDocument(c *gin.Context) {
	var req ChangeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := s.store.Get(req.URI); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documento non aperto"})
		return
	}
	s.store.Change(req.URI, req.Version, req.Text)

	entry, _ := s.store.Get(req.URI)
	c.JSON(http.StatusOK, newDocumentResponse(entry))
}

// closeDocument dimentica un documento
func (s *Server) closeDocument(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !s.store.Close(req.URI) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documento non aperto"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"uri":     req.URI,
	})
}

// document legge il documento indicato nella query
func (s *Server) document(c *gin.Context) (workspace.Entry, bool) {
	var req DocumentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return workspace.Entry{}, false
	}
	entry, ok := s.store.Get(req.URI)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documento non aperto"})
		return workspace.Entry{}, false
	}
	return entry, true
}

// getDiagnostics restituisce l'ultima analisi di un documento
func (s *Server) getDiagnostics(c *gin.Context) {
	entry, ok := s.document(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newDocumentResponse(entry))
}

// getOutline restituisce l'outline di un documento
func (s *Server) getOutline(c *gin.Context) {
	entry, ok := s.document(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uri":     entry.URI,
		"symbols": s.provider.Outline(entry.Result),
	})
}

// getFolding restituisce le regioni richiudibili di un documento
func (s *Server) getFolding(c *gin.Context) {
	entry, ok := s.document(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uri":    entry.URI,
		"ranges": s.provider.Folding(entry.Result),
	})
}

// position legge la posizione richiesta nel corpo
func (s *Server) position(c *gin.Context) (workspace.Entry, parser.Position, bool) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return workspace.Entry{}, parser.Position{}, false
	}
	entry, ok := s.store.Get(req.URI)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documento non aperto"})
		return workspace.Entry{}, parser.Position{}, false
	}
	return entry, parser.Position{Line: req.Line, Character: req.Character}, true
}

// getHover restituisce la descrizione sotto il cursore
func (s *Server) getHover(c *gin.Context) {
	entry, pos, ok := s.position(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uri":   entry.URI,
		"hover": s.provider.Hover(entry.Result, pos),
	})
}

// getCompletion restituisce i completamenti per il cursore
func (s *Server) getCompletion(c *gin.Context) {
	entry, pos, ok := s.position(c)
	if !ok {
		return
	}
	items := s.provider.Completion(entry.Result, pos)
	c.JSON(http.StatusOK, gin.H{
		"uri":   entry.URI,
		"items": items,
		"count": len(items),
	})
}
