package formats

import (
	"sort"
	"strings"
	"sync"
)

// DefaultFormat è il formato usato quando la configurazione non ne indica uno
const DefaultFormat = "branchscript"

// formatRegistry mantiene i formati registrati
var (
	registry     = make(map[string]func() ScriptFormat)
	registryLock sync.RWMutex
)

// RegisterFormat registra un nuovo formato
// Chiamato dai package dei singoli formati nel loro init()
func RegisterFormat(name string, factory func() ScriptFormat) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[strings.ToLower(name)] = factory
}

// GetRegisteredFormat restituisce il formato registrato con quel nome
func GetRegisteredFormat(name string) ScriptFormat {
	registryLock.RLock()
	defer registryLock.RUnlock()

	factory, exists := registry[strings.ToLower(name)]
	if !exists {
		return nil
	}
	return factory()
}

// GetAvailableFormats restituisce i nomi dei formati registrati
func GetAvailableFormats() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()

	formats := make([]string, 0, len(registry))
	for name := range registry {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// IsFormatRegistered verifica se un formato è registrato
func IsFormatRegistered(name string) bool {
	registryLock.RLock()
	defer registryLock.RUnlock()

	_, exists := registry[strings.ToLower(name)]
	return exists
}
