package api

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"branchscript-editor/analysis"
	"branchscript-editor/features"
	"branchscript-editor/flow"
	"branchscript-editor/formats"
	"branchscript-editor/parser"
	"branchscript-editor/watcher"
	"branchscript-editor/workspace"
)

// Version versione del backend
const Version = "0.1.0"

// Server rappresenta il server API
type Server struct {
	router       *gin.Engine
	store        *workspace.Store
	provider     *features.Provider
	format       formats.ScriptFormat
	watcher      *watcher.FileWatcher
	watcherMutex sync.Mutex
	debounceTime time.Duration
	wsClients    map[*websocket.Conn]bool
	wsMutex      sync.Mutex
	wsUpgrader   websocket.Upgrader
	port         int
}

// ServerConfig configurazione del server
type ServerConfig struct {
	Port         int
	Store        *workspace.Store
	EnableCORS   bool
	CORSOrigins  []string
	Debug        bool
	DebounceTime time.Duration
}

// NewServer crea un nuovo server API
func NewServer(config ServerConfig) (*Server, error) {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if config.Store == nil {
		store, err := workspace.NewStore(workspace.StoreConfig{})
		if err != nil {
			return nil, err
		}
		config.Store = store
	}

	router := gin.Default()

	if config.EnableCORS {
		origins := config.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
		}))
	}

	format := config.Store.Analyzer().Format()
	server := &Server{
		router:       router,
		store:        config.Store,
		provider:     features.NewProvider(format),
		format:       format,
		debounceTime: config.DebounceTime,
		wsClients:    make(map[*websocket.Conn]bool),
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
		port: config.Port,
	}

	// Ogni nuova analisi viene inoltrata ai client WebSocket
	server.store.Subscribe(server.broadcastDiagnostics)

	server.setupRoutes()

	return server, nil
}

// setupRoutes configura tutti gli endpoint
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		// Utils endpoints
		api.GET("/health", s.healthCheck)
		api.GET("/formats", s.getFormats)
		api.GET("/version", s.getVersion)

		// Analisi senza stato
		api.POST("/analyze", s.analyzeText)

		// Document endpoints
		api.GET("/documents", s.listDocuments)
		api.POST("/document/open", s.openDocument)
		api.POST("/document/change", s.changeDocument)
		api.POST("/document/close", s.closeDocument)
		api.GET("/document/diagnostics", s.getDiagnostics)
		api.GET("/document/outline", s.getOutline)
		api.GET("/document/folding", s.getFolding)
		api.POST("/document/hover", s.getHover)
		api.POST("/document/completion", s.getCompletion)

		// Story endpoints
		api.POST("/story/parse", s.parseStory)
		api.POST("/story/validate", s.validateStory)

		// Flow endpoints
		api.POST("/flow/validate", s.validatePath)
		api.POST("/flow/suggest", s.suggestPaths)
		api.POST("/flow/unreachable", s.unreachableChoices)

		// Watcher endpoints
		api.POST("/watch/start", s.startWatcher)
		api.POST("/watch/stop", s.stopWatcher)
		api.GET("/watch/status", s.getWatcherStatus)
	}

	// WebSocket endpoint
	s.router.GET("/ws", s.handleWebSocket)
}

// Handler espone il router, usato dai test
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start avvia il server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("🚀 Server avviato su http://localhost%s", addr)
	log.Printf("📚 API disponibile su http://localhost%s/api", addr)
	log.Printf("🔌 WebSocket su ws://localhost%s/ws", addr)
	return s.router.Run(addr)
}

// ============================================
// Handlers
// ============================================

// healthCheck verifica lo stato del server
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   Version,
		"documents": len(s.store.URIs()),
	})
}

// getFormats ottiene i formati disponibili
func (s *Server) getFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"formats": formats.GetAvailableFormats(),
		"active":  s.format.GetFormatName(),
	})
}

// getVersion ottiene la versione del backend
func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"version": Version,
	})
}

// ValidationResult riassume l'analisi di un testo o di un file
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	Errors      int                 `json:"errors"`
	Warnings    int                 `json:"warnings"`
	Disabled    bool                `json:"disabled"`
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
}

func newValidationResult(res *analysis.Result) ValidationResult {
	v := ValidationResult{
		Valid:       !res.HasErrors(),
		Errors:      res.Count(parser.SeverityError),
		Warnings:    res.Count(parser.SeverityWarning),
		Diagnostics: res.Diagnostics,
	}
	if v.Diagnostics == nil {
		v.Diagnostics = []parser.Diagnostic{}
	}
	if res.Document != nil {
		v.Disabled = res.Document.Disabled
	}
	return v
}

// AnalyzeRequest richiesta di analisi di un testo
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// analyzeText analizza un testo senza registrarlo nello store
func (s *Server) analyzeText(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := s.store.Analyzer().Analyze(req.Text)
	c.JSON(http.StatusOK, newValidationResult(res))
}

// FileRequest richiesta che riguarda un file su disco
type FileRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// analyzeFile legge e analizza un file
func (s *Server) analyzeFile(path string) (*analysis.Result, error) {
	text, err := parser.NewScriptParser(path).ReadText()
	if err != nil {
		return nil, err
	}
	return s.store.Analyzer().Analyze(text), nil
}

// validateStory valida un file .branch
func (s *Server) validateStory(c *gin.Context) {
	var req FileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.analyzeFile(req.FilePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newValidationResult(res))
}

// parseStory restituisce l'albero di un file .branch
func (s *Server) parseStory(c *gin.Context) {
	var req FileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.analyzeFile(req.FilePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.Document == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "parse fallito", "diagnostics": res.Diagnostics})
		return
	}

	stories := make([]gin.H, 0, len(res.Document.Stories))
	for _, story := range res.Document.Stories {
		choices := []gin.H{}
		story.Walk(func(ch *parser.Choice) {
			choices = append(choices, gin.H{
				"id":      ch.ID(),
				"label":   features.ChoiceLabel(ch, ch.Text),
				"preview": s.format.StripCode(ch.Text),
				"line":    ch.Range.Start.Line,
				"depth":   ch.Depth,
			})
		})
		stories = append(stories, gin.H{
			"id":      story.ID,
			"range":   story.Range,
			"refs":    story.Refs,
			"choices": choices,
			"count":   len(choices),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"format":   s.format.GetFormatName(),
		"disabled": res.Document.Disabled,
		"stories":  stories,
		"document": res.Document,
	})
}

// ============================================
// Flow Handlers
// ============================================

// StoryRef identifica una storia in un documento aperto o in un file
type StoryRef struct {
	URI      string `json:"uri"`
	FilePath string `json:"file_path"`
	Story    string `json:"story" binding:"required"`
}

// graph costruisce il grafo della storia richiesta
func (s *Server) graph(ref StoryRef) (*flow.Graph, int, error) {
	var res *analysis.Result
	switch {
	case ref.URI != "":
		r, ok := s.store.Result(ref.URI)
		if !ok {
			return nil, http.StatusNotFound, fmt.Errorf("documento non aperto: %s", ref.URI)
		}
		res = r
	case ref.FilePath != "":
		r, err := s.analyzeFile(ref.FilePath)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		res = r
	default:
		return nil, http.StatusBadRequest, fmt.Errorf("uri o file_path obbligatorio")
	}

	if res.Document == nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("parse fallito")
	}
	for _, story := range res.Document.Stories {
		if story.ID == ref.Story {
			return flow.NewGraph(story, s.format), http.StatusOK, nil
		}
	}
	return nil, http.StatusNotFound, fmt.Errorf("storia non trovata: %s", ref.Story)
}

// ValidatePathRequest richiesta di validazione path
type ValidatePathRequest struct {
	StoryRef
	Path []string `json:"path" binding:"required"`
}

// validatePath valida un percorso
func (s *Server) validatePath(c *gin.Context) {
	var req ValidatePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, status, err := s.graph(req.StoryRef)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, g.CheckPath(req.Path))
}

// SuggestPathsRequest richiesta di suggerimento percorsi
type SuggestPathsRequest struct {
	StoryRef
	Start    string `json:"start"`
	MaxDepth int    `json:"max_depth"`
}

// suggestPaths suggerisce percorsi validi
func (s *Server) suggestPaths(c *gin.Context) {
	var req SuggestPathsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Start == "" {
		req.Start = flow.Start
	}
	if req.MaxDepth == 0 || req.MaxDepth > 10 {
		req.MaxDepth = 5
	}

	g, status, err := s.graph(req.StoryRef)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	paths := g.GetSuggestedPaths(req.Start, req.MaxDepth)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"start":     req.Start,
		"max_depth": req.MaxDepth,
		"paths":     paths,
		"count":     len(paths),
	})
}

// unreachableChoices elenca le scelte irraggiungibili di una storia
func (s *Server) unreachableChoices(c *gin.Context) {
	var req StoryRef
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, status, err := s.graph(req)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"story":       req.Story,
		"unreachable": g.Unreachable(),
		"dangling":    g.Dangling(),
	})
}

// ============================================
// Watcher Handlers
// ============================================

// StartWatcherRequest richiesta avvio watcher
type StartWatcherRequest struct {
	Paths []string `json:"paths" binding:"required"`
}

// startWatcher avvia il file watcher
func (s *Server) startWatcher(c *gin.Context) {
	var req StartWatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.StartWatcher(req.Paths); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Watcher avviato",
		"paths":   req.Paths,
	})
}

// StartWatcher avvia il watcher sui path indicati
func (s *Server) StartWatcher(paths []string) error {
	s.watcherMutex.Lock()
	defer s.watcherMutex.Unlock()

	if s.watcher != nil && s.watcher.IsRunning() {
		return fmt.Errorf("watcher già in esecuzione")
	}

	fw, err := watcher.NewFileWatcher(watcher.WatcherConfig{
		Paths:        paths,
		Store:        s.store,
		DebounceTime: s.debounceTime,
	})
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		return err
	}

	s.watcher = fw

	// Invia eventi ai client WebSocket
	go s.broadcastWatcherEvents(fw)
	return nil
}

// stopWatcher ferma il file watcher
func (s *Server) stopWatcher(c *gin.Context) {
	s.watcherMutex.Lock()
	defer s.watcherMutex.Unlock()

	if s.watcher == nil || !s.watcher.IsRunning() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Watcher non in esecuzione"})
		return
	}

	if err := s.watcher.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.watcher = nil

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Watcher fermato",
	})
}

// getWatcherStatus ottiene lo stato del watcher
func (s *Server) getWatcherStatus(c *gin.Context) {
	s.watcherMutex.Lock()
	defer s.watcherMutex.Unlock()

	isRunning := s.watcher != nil && s.watcher.IsRunning()
	paths := []string{}
	if isRunning {
		paths = s.watcher.Paths()
	}

	c.JSON(http.StatusOK, gin.H{
		"running": isRunning,
		"paths":   paths,
	})
}
