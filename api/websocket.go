package api

import (
	"log"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"branchscript-editor/watcher"
	"branchscript-editor/workspace"
)

// ============================================
// WebSocket
// ============================================

// handleWebSocket gestisce connessioni WebSocket
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Errore upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	s.wsMutex.Lock()
	s.wsClients[conn] = true
	total := len(s.wsClients)
	s.wsMutex.Unlock()
	log.Printf("🔌 Client WebSocket connesso (totale: %d)", total)

	// Mantieni la connessione aperta
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.wsMutex.Lock()
			delete(s.wsClients, conn)
			total = len(s.wsClients)
			s.wsMutex.Unlock()
			log.Printf("🔌 Client WebSocket disconnesso (totale: %d)", total)
			return
		}
	}
}

// broadcast invia un messaggio a tutti i client connessi
func (s *Server) broadcast(message any) {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()

	for client := range s.wsClients {
		if err := client.WriteJSON(message); err != nil {
			log.Printf("Errore invio WebSocket: %v", err)
			client.Close()
			delete(s.wsClients, client)
		}
	}
}

// broadcastDiagnostics inoltra una nuova analisi ai client
func (s *Server) broadcastDiagnostics(entry workspace.Entry) {
	s.broadcast(gin.H{
		"type":     "diagnostics",
		"uri":      entry.URI,
		"document": newDocumentResponse(entry),
	})
}

// broadcastWatcherEvents invia eventi del watcher ai client WebSocket
func (s *Server) broadcastWatcherEvents(fw *watcher.FileWatcher) {
	for event := range fw.Events() {
		s.broadcast(gin.H{
			"type":      event.Type,
			"path":      filepath.Base(event.Path),
			"full_path": event.Path,
			"timestamp": event.Timestamp,
			"version":   event.Version,
			"errors":    event.Errors,
			"warnings":  event.Warnings,
		})
	}
}

// ClientCount restituisce il numero di client WebSocket connessi
func (s *Server) ClientCount() int {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()
	return len(s.wsClients)
}
