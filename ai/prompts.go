package ai

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"nuanswers/internal"
)

//go:embed prompts/*.txt
var builtinPrompts embed.FS

// Prompt names
const (
	PromptTutorSystem   = "tutor_system"
	PromptImageAnalysis = "image_analysis"
)

// Global map to track initialized prompt directories (to avoid duplicate logs)
var (
	initializedDirs   = make(map[string]bool)
	initializedDirsMu sync.RWMutex
)

// PromptManager loads prompt templates, preferring PromptsDir over the built-in set
type PromptManager struct {
	PromptsDir string
}

// NewPromptManager creates a prompt manager. An empty dir uses only built-in prompts.
func NewPromptManager(promptsDir string) *PromptManager {
	if promptsDir != "" {
		initializedDirsMu.Lock()
		if !initializedDirs[promptsDir] {
			initializedDirs[promptsDir] = true
			internal.DefaultLogger.Info("[PromptManager] Initialized for directory: %s", promptsDir)
		}
		initializedDirsMu.Unlock()
	}
	return &PromptManager{PromptsDir: promptsDir}
}

// LoadPrompt loads a prompt template by name
func (pm *PromptManager) LoadPrompt(name string) (string, error) {
	if pm.PromptsDir != "" {
		content, err := os.ReadFile(filepath.Join(pm.PromptsDir, name+".txt"))
		if err == nil {
			return strings.TrimRight(string(content), "\n"), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to load prompt %s: %w", name, err)
		}
	}

	content, err := builtinPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt template not found: %s", name)
	}
	return strings.TrimRight(string(content), "\n"), nil
}
