package prompts

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LoadContext reads the personal context documents (.txt and .md files:
// CV, profile, preferences) from dir and formats them as an XML documents
// block appended to the system prompt. Unreadable files are skipped.
func LoadContext(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Error loading personal documents from %s: %v", dir, err)
		}
		return ""
	}

	var docs []string
	index := 1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("Failed to read context document %s: %v", entry.Name(), err)
			continue
		}

		docs = append(docs, fmt.Sprintf(`<document index=%q>
<source>%s</source>
<document_content>
%s
</document_content>
</document>`, fmt.Sprint(index), entry.Name(), strings.TrimSpace(string(content))))
		index++
	}

	if len(docs) == 0 {
		return ""
	}

	return fmt.Sprintf(`Find the following context about me and job analysis:
<documents>
%s
</documents>`, strings.Join(docs, "\n"))
}
