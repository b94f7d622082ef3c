package watcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"branchscript-editor/parser"
	"branchscript-editor/workspace"
)

// Extension è l'estensione dei file BranchScript
const Extension = ".branch"

// Tipi di evento
const (
	EventCreated  = "created"
	EventModified = "modified"
	EventDeleted  = "deleted"
	EventRenamed  = "renamed"
	EventAnalyzed = "analyzed"
	EventError    = "read_error"
)

// FileWatcher monitora i file .branch e li rianalizza nello store
type FileWatcher struct {
	watcher      *fsnotify.Watcher
	watchedPaths []string
	store        *workspace.Store
	debounceTime time.Duration
	eventChan    chan WatchEvent
	stopChan     chan struct{}

	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	versions    map[string]int
	isRunning   bool
	closed      bool
}

// WatchEvent rappresenta un evento del watcher
type WatchEvent struct {
	Type      string    `json:"type"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version,omitempty"`
	Errors    int       `json:"errors,omitempty"`
	Warnings  int       `json:"warnings,omitempty"`
}

// WatcherConfig configurazione per il watcher
type WatcherConfig struct {
	Paths        []string         // Path da monitorare
	Store        *workspace.Store // Store in cui rianalizzare i file
	DebounceTime time.Duration    // Tempo di debounce (default: 500ms)
}

// NewFileWatcher crea un nuovo file watcher
func NewFileWatcher(config WatcherConfig) (*FileWatcher, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("store obbligatorio")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("errore creazione watcher: %w", err)
	}

	if config.DebounceTime == 0 {
		config.DebounceTime = 500 * time.Millisecond
	}

	fw := &FileWatcher{
		watcher:      watcher,
		store:        config.Store,
		debounceTime: config.DebounceTime,
		eventChan:    make(chan WatchEvent, 100),
		stopChan:     make(chan struct{}),
		debounceMap:  make(map[string]*time.Timer),
		versions:     make(map[string]int),
	}

	for _, path := range config.Paths {
		if err := fw.AddPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return fw, nil
}

// Start avvia il file watcher
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.isRunning || fw.closed {
		fw.mu.Unlock()
		return fmt.Errorf("watcher già in esecuzione")
	}
	fw.isRunning = true
	fw.mu.Unlock()

	log.Println("🚀 File watcher avviato!")

	go fw.loop()
	return nil
}

func (fw *FileWatcher) loop() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("❌ Errore watcher: %v", err)

		case <-fw.stopChan:
			log.Println("🛑 File watcher fermato")
			return
		}
	}
}

// handle traduce un evento fsnotify e pianifica la rianalisi
func (fw *FileWatcher) handle(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, Extension) {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventDeleted
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventRenamed
	default:
		return
	}

	log.Printf("📝 File %s: %s", eventType, filepath.Base(event.Name))
	fw.emit(WatchEvent{Type: eventType, Path: event.Name, Timestamp: time.Now()})

	path := event.Name
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if timer, exists := fw.debounceMap[path]; exists {
		timer.Stop()
	}
	fw.debounceMap[path] = time.AfterFunc(fw.debounceTime, func() {
		fw.mu.Lock()
		delete(fw.debounceMap, path)
		fw.mu.Unlock()

		switch eventType {
		case EventCreated, EventModified:
			fw.reanalyze(path)
		default:
			fw.forget(path)
		}
	})
}

// reanalyze legge il file e aggiorna lo store
func (fw *FileWatcher) reanalyze(path string) {
	log.Printf("🔄 Rianalisi: %s", filepath.Base(path))

	text, err := parser.NewScriptParser(path).ReadText()
	if err != nil {
		log.Printf("❌ %v", err)
		fw.emit(WatchEvent{Type: EventError, Path: path, Timestamp: time.Now()})
		return
	}

	fw.mu.Lock()
	fw.versions[path]++
	version := fw.versions[path]
	fw.mu.Unlock()

	start := time.Now()
	res := fw.store.Change(path, version, text)
	errCount := res.Count(parser.SeverityError)
	warnCount := res.Count(parser.SeverityWarning)

	if errCount > 0 {
		log.Printf("❌ %s: %d errori, %d warning (%v)", filepath.Base(path), errCount, warnCount, time.Since(start))
	} else {
		log.Printf("✅ %s analizzato in %v", filepath.Base(path), time.Since(start))
		if warnCount > 0 {
			log.Printf("⚠️  %d warning(s)", warnCount)
		}
	}

	fw.emit(WatchEvent{
		Type:      EventAnalyzed,
		Path:      path,
		Timestamp: time.Now(),
		Version:   version,
		Errors:    errCount,
		Warnings:  warnCount,
	})
}

// forget chiude il documento se il file non esiste più
func (fw *FileWatcher) forget(path string) {
	if _, err := os.Stat(path); err == nil {
		// rinominato sul posto (salvataggio atomico): il file c'è ancora
		fw.reanalyze(path)
		return
	}
	fw.store.Close(path)
	fw.mu.Lock()
	delete(fw.versions, path)
	fw.mu.Unlock()
}

// emit invia un evento senza bloccare dopo lo Stop
func (fw *FileWatcher) emit(event WatchEvent) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return
	}
	select {
	case fw.eventChan <- event:
	default:
		log.Printf("⚠️  Canale eventi pieno, evento %s scartato", event.Type)
	}
}

// Stop ferma il file watcher
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.isRunning {
		fw.mu.Unlock()
		return fmt.Errorf("watcher non in esecuzione")
	}
	fw.isRunning = false
	fw.closed = true
	for path, timer := range fw.debounceMap {
		timer.Stop()
		delete(fw.debounceMap, path)
	}
	close(fw.eventChan)
	fw.mu.Unlock()

	close(fw.stopChan)

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("errore chiusura watcher: %w", err)
	}
	return nil
}

// Events restituisce il canale degli eventi
func (fw *FileWatcher) Events() <-chan WatchEvent {
	return fw.eventChan
}

// IsRunning verifica se il watcher è attivo
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.isRunning
}

// Paths restituisce i path monitorati
func (fw *FileWatcher) Paths() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return append([]string(nil), fw.watchedPaths...)
}

// AddPath aggiunge un path da monitorare
func (fw *FileWatcher) AddPath(path string) error {
	if err := fw.watcher.Add(path); err != nil {
		return fmt.Errorf("errore aggiunta path %s: %w", path, err)
	}
	fw.mu.Lock()
	fw.watchedPaths = append(fw.watchedPaths, path)
	fw.mu.Unlock()
	log.Printf("👀 Watching: %s", path)
	return nil
}

// RemovePath rimuove un path dal monitoraggio
func (fw *FileWatcher) RemovePath(path string) error {
	if err := fw.watcher.Remove(path); err != nil {
		return fmt.Errorf("errore rimozione path: %w", err)
	}

	fw.mu.Lock()
	for i, p := range fw.watchedPaths {
		if p == path {
			fw.watchedPaths = append(fw.watchedPaths[:i], fw.watchedPaths[i+1:]...)
			break
		}
	}
	fw.mu.Unlock()

	log.Printf("👁️  Stopped watching: %s", path)
	return nil
}
