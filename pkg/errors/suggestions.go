package errors

import "fmt"

// SuggestionGenerator produces recovery advice for an error category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, affectedPath string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

// suggestionGenerator is the concrete implementation of SuggestionGenerator.
type suggestionGenerator struct{}

// Generate returns suggestions for the category, personalized with the
// affected path when one is known.
func (g *suggestionGenerator) Generate(category ErrorCategory, affectedPath string) []string {
	switch category {
	case CategoryPermission:
		return g.permissionSuggestions(affectedPath)
	case CategoryDiskSpace:
		return g.diskSpaceSuggestions(affectedPath)
	case CategoryMount:
		return g.mountSuggestions(affectedPath)
	case CategoryPath:
		return g.pathSuggestions(affectedPath)
	case CategoryCopy:
		return g.copySuggestions(affectedPath)
	case CategoryUnknown:
		return g.unknownSuggestions(affectedPath)
	default:
		return g.unknownSuggestions(affectedPath)
	}
}

func (g *suggestionGenerator) copySuggestions(_ string) []string {
	return []string{
		"Check free space on the stage volume",
		"Verify the depot and stage media are healthy",
		"Run again - interrupted runs resume, files already staged are reused",
		"Check system logs for hardware or network issues",
	}
}

func (g *suggestionGenerator) diskSpaceSuggestions(path string) []string {
	suggestions := []string{
		"Free up space on the stage volume",
		"Check available space with 'df -h'",
		"Remove old staged versions that are no longer needed",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify disk usage for the filesystem containing "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) mountSuggestions(path string) []string {
	suggestions := []string{
		"Confirm the depot share is still mounted and reachable",
		"Remount the network share and run again",
	}

	if path != "" {
		suggestions = append(suggestions, "Check the mount serving "+path)
	}

	suggestions = append(suggestions, "Files already staged are reused on the next run")

	return suggestions
}

func (g *suggestionGenerator) pathSuggestions(path string) []string {
	suggestions := []string{
		"Verify the depot and stage paths exist and are spelled correctly",
	}

	if path != "" {
		suggestions = append(suggestions, "Check if the path exists: "+path)
		suggestions = append(suggestions, "If "+path+" lives on a network share, confirm it is mounted")
	} else {
		suggestions = append(suggestions, "If the path lives on a network share, confirm it is mounted")
	}

	return suggestions
}

func (g *suggestionGenerator) permissionSuggestions(path string) []string {
	suggestions := []string{
		"Ensure you can read the depot and write the stage directory",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check permissions with 'ls -la %s'", path))
	} else {
		suggestions = append(suggestions, "Check permissions with 'ls -la' on the affected path")
	}

	suggestions = append(suggestions, "Check the credentials used to mount the share, if any")

	return suggestions
}

func (g *suggestionGenerator) unknownSuggestions(path string) []string {
	suggestions := []string{
		"Check the error message for more details",
		"Verify file and directory permissions",
		"Ensure sufficient disk space is available",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify the path is accessible: "+path)
	}

	return suggestions
}
