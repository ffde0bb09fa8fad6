package tools

import (
	"regexp"
	"strings"
)

// selectorKeywords is scanned in order; ties on score keep the earlier category.
var selectorKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryFileOperations, []string{
		"read", "file", "write", "directory", "folder", "save", "load",
		".py", ".md", ".txt", ".json", ".csv", ".yaml", ".yml",
		"filepath", "path", "open", "create", "delete", "edit",
	}},
	{CategoryShellOperations, []string{
		"bash", "shell", "command", "grep", "glob", "terminal", "cli",
		"execute", "run", "find", "search", "pattern", "regex",
	}},
	{"file_format_search", []string{
		"search in", "find in", "csv", "pdf", "docx", "json", "xml",
		"markdown", "mdx", "txt", "within file",
	}},
	{CategoryWebSearch, []string{
		"search", "google", "find information", "lookup", "research",
		"web", "internet", "online", "news", "scholar", "job",
	}},
	{"web_scraping", []string{
		"scrape", "crawl", "extract", "website", "url", "html",
		"webpage", "download", "fetch",
	}},
	{CategoryCodeDevelopment, []string{
		"code", "programming", "function", "class", "github", "repo",
		"repository", "debug", "execute code", "python", "javascript",
	}},
	{"database", []string{
		"database", "query", "sql", "mysql", "postgres", "mongodb",
		"vector", "search database", "db",
	}},
	{"ai_ml_services", []string{
		"image", "generate", "dall-e", "vision", "rag", "embedding",
		"llm", "model", "ai service",
	}},
	{"automation", []string{
		"automate", "workflow", "zapier", "composio", "integration",
		"api", "webhook",
	}},
	{"media", []string{
		"youtube", "video", "channel", "ocr", "image", "picture",
		"photo", "media",
	}},
}

// categoryToolSets lists the categories that have a dedicated tool set.
var categoryToolSets = map[string]string{
	CategoryFileOperations:  SetFileOperations,
	CategoryShellOperations: SetShellOperations,
	CategoryCodeDevelopment: SetCodeAnalysis,
	CategoryWebSearch:       SetWebResearch,
}

const categoryMentionBonus = 5

var extensionPattern = regexp.MustCompile(`\.\w+`)

// Analysis is the keyword scoring of a prompt.
type Analysis struct {
	PrimaryCategory   string         `json:"primary_category,omitempty"`
	Scores            map[string]int `json:"category_scores"`
	MatchedCategories []string       `json:"matched_categories"`
	Confidence        int            `json:"confidence"`
}

// Selector picks tools by keyword scoring when no task type is known.
type Selector struct {
	provider  Provider
	threshold int
}

// NewSelector creates a selector. Prompts whose best category scores at
// least threshold get that category's tool set.
func NewSelector(provider Provider, threshold int) *Selector {
	if threshold < 1 {
		threshold = 3
	}
	return &Selector{provider: provider, threshold: threshold}
}

// Analyze scores every keyword category against the prompt.
func (s *Selector) Analyze(prompt string) Analysis {
	lower := strings.ToLower(prompt)
	a := Analysis{Scores: make(map[string]int)}

	bump := func(category string, n int) {
		if _, seen := a.Scores[category]; !seen {
			a.MatchedCategories = append(a.MatchedCategories, category)
		}
		a.Scores[category] += n
	}

	best := 0
	for _, kc := range selectorKeywords {
		score := 0
		for _, kw := range kc.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		bump(kc.category, score)
		if score > best {
			best = score
			a.PrimaryCategory = kc.category
		}
	}

	// Extension and category-name bonuses raise scores but only claim the
	// primary slot when no keyword matched.
	if exts := extensionPattern.FindAllString(lower, -1); len(exts) > 0 {
		bump(CategoryFileOperations, len(exts))
		if a.PrimaryCategory == "" {
			a.PrimaryCategory = CategoryFileOperations
		}
	}
	for _, cat := range defaultCategories {
		if strings.Contains(lower, cat.ID) {
			bump(cat.ID, categoryMentionBonus)
			if a.PrimaryCategory == "" {
				a.PrimaryCategory = cat.ID
			}
		}
	}

	for _, score := range a.Scores {
		if score > a.Confidence {
			a.Confidence = score
		}
	}
	return a
}

// RecommendedToolSet names the tool set the prompt should use.
func (s *Selector) RecommendedToolSet(prompt string) string {
	return s.recommend(s.Analyze(prompt))
}

// SelectTools returns at most maxTools handles for the prompt. A maxTools of
// zero or less means no limit.
func (s *Selector) SelectTools(prompt string, maxTools int) []Handle {
	_, handles := s.Choose(prompt, maxTools)
	return handles
}

// Choose is SelectTools that also names the tool set the handles came from.
// A recommended set with nothing available degrades to comprehensive.
func (s *Selector) Choose(prompt string, maxTools int) (string, []Handle) {
	set := s.RecommendedToolSet(prompt)
	handles, err := s.provider.ToolSet(set)
	if err != nil || len(handles) == 0 {
		set = SetComprehensive
		handles, _ = s.provider.ToolSet(set)
	}
	if maxTools > 0 && len(handles) > maxTools {
		handles = handles[:maxTools]
	}
	return set, handles
}

// SelectToolsByCategory returns up to five handles from a category.
func (s *Selector) SelectToolsByCategory(category string) []Handle {
	handles := s.provider.Category(category)
	if len(handles) > 5 {
		handles = handles[:5]
	}
	return handles
}

func (s *Selector) recommend(a Analysis) string {
	if a.Confidence >= s.threshold && a.PrimaryCategory != "" {
		if set, ok := categoryToolSets[a.PrimaryCategory]; ok {
			return set
		}
	}
	return SetComprehensive
}
