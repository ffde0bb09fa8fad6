// Package tools holds the static capability tables and the two strategies
// used to pick capabilities for a request: the task-type matrix and the
// keyword-scored selector. Capabilities are opaque handles; nothing in this
// package invokes them.
package tools

import (
	"errors"
	"fmt"
	"sort"
)

// ShellTool is the shell-execution capability appended to bash-flavoured tasks.
const ShellTool = "ShellTool"

// Category and tool-set identifiers referenced by the matrix and selector.
const (
	CategoryFileOperations  = "file_operations"
	CategoryShellOperations = "shell_operations"
	CategoryCodeDevelopment = "code_development"
	CategoryWebSearch       = "web_search"

	SetFileOperations  = "file_operations"
	SetShellOperations = "shell_operations"
	SetCodeAnalysis    = "code_analysis"
	SetWebResearch     = "web_research"
	SetComprehensive   = "comprehensive"
	SetMinimal         = "minimal"
)

// ErrUnknownToolSet is returned when a tool-set name is not in the catalog.
var ErrUnknownToolSet = errors.New("unknown tool set")

// Handle is an opaque reference to an external capability.
type Handle struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Category describes a group of related capabilities.
type Category struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tools       []string `json:"tools"`
}

// ToolSet is a pre-configured list of capabilities for a common use case.
type ToolSet struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Tools    []string `json:"tools"`
	UseCases []string `json:"use_cases"`
}

// Provider is the boundary to the external capability registry.
type Provider interface {
	// ToolSet resolves a named tool set to handles.
	ToolSet(name string) ([]Handle, error)
	// Category returns the handles in a category, or nil if unknown.
	Category(name string) []Handle
	// Available reports whether a capability exists in this environment.
	Available(tool string) bool
}

// Catalog is the built-in, read-only capability registry.
type Catalog struct {
	categories  []Category
	sets        map[string]ToolSet
	home        map[string]string
	unavailable map[string]bool
}

var defaultCategories = []Category{
	{
		ID:          CategoryFileOperations,
		Name:        "File Operations",
		Description: "Tools for reading, writing, and managing files and directories",
		Tools:       []string{"FileReadTool", "FileWriterTool", "DirectoryReadTool", "DirectorySearchTool", "FileCompressorTool"},
	},
	{
		ID:          CategoryShellOperations,
		Name:        "Shell Operations (BASH, GREP, GLOB)",
		Description: "Shell command execution, grep, glob patterns, and bash operations",
		Tools:       []string{ShellTool},
	},
	{
		ID:          "file_format_search",
		Name:        "File Format Search (RAG)",
		Description: "RAG-based search tools for specific file formats",
		Tools:       []string{"CSVSearchTool", "DOCXSearchTool", "JSONSearchTool", "MDXSearchTool", "PDFSearchTool", "TXTSearchTool", "XMLSearchTool"},
	},
	{
		ID:          CategoryWebSearch,
		Name:        "Web Search",
		Description: "Tools for searching the web and extracting information",
		Tools: []string{
			"SerperDevTool", "SerpApiGoogleSearchTool", "SerpApiGoogleShoppingTool", "BraveSearchTool",
			"TavilySearchTool", "TavilyExtractorTool", "WebsiteSearchTool", "SerplyWebSearchTool",
			"SerplyNewsSearchTool", "SerplyScholarSearchTool", "SerplyJobSearchTool", "SerplyWebpageToMarkdownTool",
		},
	},
	{
		ID:          "web_scraping",
		Name:        "Web Scraping",
		Description: "Tools for scraping and extracting data from websites",
		Tools: []string{
			"ScrapeWebsiteTool", "ScrapeElementFromWebsiteTool", "FirecrawlSearchTool", "FirecrawlCrawlWebsiteTool",
			"FirecrawlScrapeWebsiteTool", "JinaScrapeWebsiteTool", "ScrapflyScrapeWebsiteTool",
			"SerperScrapeWebsiteTool", "ScrapegraphScrapeTool", "SeleniumScrapingTool",
		},
	},
	{
		ID:          CategoryCodeDevelopment,
		Name:        "Code & Development",
		Description: "Tools for code execution, documentation search, and GitHub integration",
		Tools:       []string{"CodeInterpreterTool", "CodeDocsSearchTool", "GithubSearchTool"},
	},
	{
		ID:          "database",
		Name:        "Database & Data Sources",
		Description: "Tools for querying databases and vector stores",
		Tools: []string{
			"MySQLSearchTool", "SingleStoreSearchTool", "SnowflakeSearchTool", "DatabricksQueryTool", "NL2SQLTool",
			"MongoDBVectorSearchTool", "CouchbaseFTSVectorSearchTool", "QdrantVectorSearchTool", "WeaviateVectorSearchTool",
		},
	},
	{
		ID:          "ai_ml_services",
		Name:        "AI/ML Services",
		Description: "AI and ML service integrations",
		Tools: []string{
			"DallETool", "VisionTool", "RagTool", "LlamaIndexTool", "ContextualAICreateAgentTool",
			"ContextualAIQueryTool", "ContextualAIRerankTool", "ContextualAIParseTool",
		},
	},
	{
		ID:          "automation",
		Name:        "Automation & Integration",
		Description: "Tools for workflow automation and integrations",
		Tools: []string{
			"ComposioTool", "ZapierActionTool", "MultiOnTool", "StagehandTool", "SpiderTool",
			"GenerateCrewaiAutomationTool", "InvokeCrewAIAutomationTool",
		},
	},
	{
		ID:          "media",
		Name:        "Media & Content",
		Description: "Tools for media content and OCR",
		Tools:       []string{"YoutubeVideoSearchTool", "YoutubeChannelSearchTool", "OCRTool"},
	},
	{
		ID:          "specialized",
		Name:        "Specialized Tools",
		Description: "Specialized tools for specific use cases",
		Tools: []string{
			"EXASearchTool", "ParallelSearchTool", "ArxivPaperTool", "LinkupSearchTool",
			"OxylabsAmazonProductScraperTool", "OxylabsAmazonSearchScraperTool", "OxylabsGoogleSearchScraperTool",
			"OxylabsUniversalScraperTool", "BrowserbaseLoadTool", "HyperbrowserLoadTool", "BrightDataDatasetTool",
			"BrightDataSearchTool", "BrightDataWebUnlockerTool", "AIMindTool", "PatronusEvalTool",
			"PatronusLocalEvaluatorTool", "PatronusPredefinedCriteriaEvalTool", "ApifyActorsTool",
		},
	},
}

var defaultToolSets = []ToolSet{
	{
		ID:       SetFileOperations,
		Name:     "File Operations Set",
		Tools:    []string{"FileReadTool", "FileWriterTool", "DirectoryReadTool"},
		UseCases: []string{"Reading files", "Writing files", "Directory operations"},
	},
	{
		ID:       SetShellOperations,
		Name:     "Shell Operations Set (BASH, GREP, GLOB)",
		Tools:    []string{ShellTool},
		UseCases: []string{"Shell commands", "grep operations", "glob patterns", "bash scripting"},
	},
	{
		ID:       SetCodeAnalysis,
		Name:     "Code Analysis Set",
		Tools:    []string{"FileReadTool", "CodeInterpreterTool", "CodeDocsSearchTool", "GithubSearchTool"},
		UseCases: []string{"Code review", "Code analysis", "Documentation search"},
	},
	{
		ID:       SetWebResearch,
		Name:     "Web Research Set",
		Tools:    []string{"SerperDevTool", "WebsiteSearchTool", "ScrapeWebsiteTool", "TavilySearchTool"},
		UseCases: []string{"Web research", "Information gathering", "Content extraction"},
	},
	{
		ID:   SetComprehensive,
		Name: "Comprehensive Set",
		Tools: []string{
			"FileReadTool", "FileWriterTool", "DirectoryReadTool", "SerperDevTool",
			"CodeInterpreterTool", "WebsiteSearchTool", "GithubSearchTool", ShellTool,
		},
		UseCases: []string{"General purpose", "Multi-domain tasks"},
	},
	{
		ID:       SetMinimal,
		Name:     "Minimal Set",
		Tools:    []string{"FileReadTool"},
		UseCases: []string{"Basic file operations"},
	},
}

// DefaultCatalog returns the built-in capability registry.
func DefaultCatalog() *Catalog {
	c := &Catalog{
		categories:  defaultCategories,
		sets:        make(map[string]ToolSet, len(defaultToolSets)),
		home:        make(map[string]string),
		unavailable: map[string]bool{},
	}
	for _, s := range defaultToolSets {
		c.sets[s.ID] = s
	}
	for _, cat := range c.categories {
		for _, tool := range cat.Tools {
			if _, ok := c.home[tool]; !ok {
				c.home[tool] = cat.ID
			}
		}
	}
	return c
}

// WithUnavailable returns a copy of the catalog in which the named
// capabilities are missing from every category and tool set, as in an
// environment that lacks them.
func (c *Catalog) WithUnavailable(names ...string) *Catalog {
	out := &Catalog{
		categories:  c.categories,
		sets:        c.sets,
		home:        c.home,
		unavailable: make(map[string]bool, len(c.unavailable)+len(names)),
	}
	for name := range c.unavailable {
		out.unavailable[name] = true
	}
	for _, name := range names {
		out.unavailable[name] = true
	}
	return out
}

// ToolSet resolves a tool set to the handles available in this environment.
func (c *Catalog) ToolSet(name string) ([]Handle, error) {
	set, ok := c.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownToolSet, name)
	}
	return c.handles(set.Tools), nil
}

// Category returns the available handles in a category, or nil if unknown.
func (c *Catalog) Category(name string) []Handle {
	for _, cat := range c.categories {
		if cat.ID == name {
			return c.handles(cat.Tools)
		}
	}
	return nil
}

// Available reports whether the capability is known and not disabled.
func (c *Catalog) Available(tool string) bool {
	_, known := c.home[tool]
	return known && !c.unavailable[tool]
}

// Categories returns the category table in its declared order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// ToolSets returns the tool-set table sorted by ID.
func (c *Catalog) ToolSets() []ToolSet {
	out := make([]ToolSet, 0, len(c.sets))
	for _, s := range c.sets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllToolNames lists every available capability once, in category order.
func (c *Catalog) AllToolNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, cat := range c.categories {
		for _, tool := range cat.Tools {
			if seen[tool] || c.unavailable[tool] {
				continue
			}
			seen[tool] = true
			names = append(names, tool)
		}
	}
	return names
}

// Lookup returns the handle for a capability name.
func (c *Catalog) Lookup(tool string) (Handle, bool) {
	if !c.Available(tool) {
		return Handle{}, false
	}
	return Handle{Name: tool, Category: c.home[tool]}, true
}

func (c *Catalog) handles(names []string) []Handle {
	out := make([]Handle, 0, len(names))
	for _, name := range names {
		if c.unavailable[name] {
			continue
		}
		out = append(out, Handle{Name: name, Category: c.home[name]})
	}
	return out
}

// Names returns the capability names of handles, preserving order.
func Names(handles []Handle) []string {
	names := make([]string, len(handles))
	for i, h := range handles {
		names[i] = h.Name
	}
	return names
}
