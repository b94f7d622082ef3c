// Package workspace tiene lo stato dei documenti aperti e memorizza
// l'ultima analisi di ciascuno fino alla modifica successiva.
package workspace

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"

	"branchscript-editor/analysis"
)

// Entry è lo stato di un documento aperto. Il Result è condiviso in sola
// lettura tra i consumatori.
type Entry struct {
	URI     string           `json:"uri"`
	Version int              `json:"version"`
	Text    string           `json:"-"`
	Result  *analysis.Result `json:"-"`
}

// Listener viene chiamato dopo ogni nuova analisi
type Listener func(entry Entry)

// Store mantiene un'analisi per documento
type Store struct {
	mu        sync.RWMutex
	docs      map[string]*Entry
	analyzer  *analysis.Analyzer
	cache     *ristretto.Cache[uint64, *analysis.Result]
	listeners []Listener
	// seq ordina aggiornamenti e chiusure; applied è l'ultimo valore
	// applicato a ogni URI
	seq     uint64
	applied map[string]uint64
	// run esegue l'analisi vera e propria
	run func(text string) *analysis.Result
}

// StoreConfig configurazione dello store
type StoreConfig struct {
	Analyzer *analysis.Analyzer
	// CacheEntries è il numero massimo di risultati tenuti in cache per
	// contenuto; 0 disabilita la cache
	CacheEntries int64
}

// NewStore crea un nuovo store
func NewStore(config StoreConfig) (*Store, error) {
	if config.Analyzer == nil {
		config.Analyzer = analysis.NewAnalyzer(analysis.Options{})
	}
	s := &Store{
		docs:     make(map[string]*Entry),
		analyzer: config.Analyzer,
		applied:  make(map[string]uint64),
		run:      config.Analyzer.Analyze,
	}
	if config.CacheEntries > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[uint64, *analysis.Result]{
			NumCounters:        config.CacheEntries * 10,
			MaxCost:            config.CacheEntries,
			BufferItems:        64,
			// il costo è il numero di risultati, non la memoria
			IgnoreInternalCost: true,
		})
		if err != nil {
			return nil, fmt.Errorf("errore creazione cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Subscribe registra un listener per le nuove analisi
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Open registra un documento e lo analizza
func (s *Store) Open(uri string, version int, text string) *analysis.Result {
	return s.update(uri, version, text)
}

// Change sostituisce il testo. Il vecchio risultato viene scartato sotto
// lock prima che chiunque possa leggere quello nuovo.
func (s *Store) Change(uri string, version int, text string) *analysis.Result {
	return s.update(uri, version, text)
}

// update analizza fuori dal lock e poi sostituisce la voce. Se nel
// frattempo è arrivato un aggiornamento o una chiusura più recente, il
// risultato viene restituito ma non memorizzato.
func (s *Store) update(uri string, version int, text string) *analysis.Result {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	result := s.analyze(text)

	s.mu.Lock()
	if s.applied[uri] > seq {
		s.mu.Unlock()
		return result
	}
	s.applied[uri] = seq
	entry := &Entry{URI: uri, Version: version, Text: text, Result: result}
	s.docs[uri] = entry
	listeners := append([]Listener(nil), s.listeners...)
	snapshot := *entry
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return result
}

// analyze riusa un risultato per lo stesso testo, se presente in cache
func (s *Store) analyze(text string) *analysis.Result {
	if s.cache == nil {
		return s.run(text)
	}
	key := xxhash.Sum64String(text)
	if res, ok := s.cache.Get(key); ok {
		return res
	}
	res := s.run(text)
	s.cache.Set(key, res, 1)
	return res
}

// Close dimentica un documento
func (s *Store) Close(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.docs[uri]
	delete(s.docs, uri)
	s.seq++
	s.applied[uri] = s.seq
	return exists
}

// Get restituisce una copia dello stato di un documento
func (s *Store) Get(uri string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, exists := s.docs[uri]
	if !exists {
		return Entry{}, false
	}
	return *entry, true
}

// Result restituisce l'ultima analisi di un documento
func (s *Store) Result(uri string) (*analysis.Result, bool) {
	entry, ok := s.Get(uri)
	if !ok {
		return nil, false
	}
	return entry.Result, true
}

// URIs elenca i documenti aperti in ordine alfabetico
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Analyzer restituisce l'analizzatore usato dallo store
func (s *Store) Analyzer() *analysis.Analyzer {
	return s.analyzer
}

// Shutdown rilascia la cache
func (s *Store) Shutdown() {
	if s.cache != nil {
		s.cache.Close()
	}
}
