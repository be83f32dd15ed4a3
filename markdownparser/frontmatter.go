package markdownparser

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// FrontMatter holds the YAML header of a grammar document. Unknown keys are
// allowed so that documents can carry their own metadata.
type FrontMatter struct {
	Name      string            `yaml:"name"`
	Package   string            `yaml:"package"`
	StartRule string            `yaml:"start_rule"`
	Functions map[string]string `yaml:"functions"`
}

// parseFrontMatter extracts YAML front matter from markdown content.
// The returned body starts at the line after the closing delimiter.
func parseFrontMatter(content string) (FrontMatter, string, error) {
	var frontMatter FrontMatter

	// Check if content starts with front matter delimiter
	if !strings.HasPrefix(content, "---\n") {
		return frontMatter, content, nil
	}

	// Find the closing delimiter
	endIndex := strings.Index(content[4:], "\n---")
	if endIndex == -1 {
		return frontMatter, "", ErrInvalidFrontMatter
	}

	endIndex += 4 // Adjust for the initial slice

	frontMatterContent := content[4:endIndex]
	remainingContent := strings.TrimPrefix(content[endIndex+4:], "\n")

	err := yaml.Unmarshal([]byte(frontMatterContent), &frontMatter)
	if err != nil {
		return frontMatter, "", fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}

	return frontMatter, remainingContent, nil
}

// countFrontMatterLines counts the number of lines used by front matter
func countFrontMatterLines(content string) int {
	lines := strings.Split(content, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return 0
	}

	// Find the end of front matter
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i + 1 // +1 to include the closing ---
		}
	}

	return 0
}
