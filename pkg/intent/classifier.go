package intent

import (
	"math"
	"strings"

	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/history"
)

// Classifier maps raw request text to an intent, confidence and routing.
// It is not safe for concurrent use because it keeps a history of results.
type Classifier struct {
	prefix     string
	thresholds config.Thresholds
	history    *history.Ring[Classification]
	sink       history.Sink
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSink publishes every classification to sink.
func WithSink(sink history.Sink) Option {
	return func(c *Classifier) {
		c.sink = sink
	}
}

// NewClassifier creates a classifier using the prefix, thresholds and
// history limit from cfg. A nil cfg uses the defaults.
func NewClassifier(cfg *config.RoutingConfig, opts ...Option) *Classifier {
	if cfg == nil {
		cfg = config.DefaultRoutingConfig()
	}
	c := &Classifier{
		prefix:     cfg.CommandPrefix,
		thresholds: cfg.Thresholds,
		history:    history.NewRing[Classification](cfg.HistoryLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify classifies input and records the result in the history.
func (c *Classifier) Classify(input string, ctx *Context) Classification {
	lower := strings.ToLower(strings.TrimSpace(input))

	intent := c.determineIntent(lower)
	confidence := calculateConfidence(lower, intent)

	result := Classification{
		Intent:                intent,
		Confidence:            confidence,
		OperationType:         DetectOperationType(lower),
		Input:                 input,
		Context:               evaluateContext(lower, ctx),
		RequiresClarification: confidence < c.thresholds.Clarify,
		Routing:               RouteFor(confidence, c.thresholds),
	}

	c.history.Add(result)
	if c.sink != nil {
		c.sink.Record(result)
	}
	return result
}

// Route returns the routing for a confidence using the classifier's thresholds.
func (c *Classifier) Route(confidence float64) Routing {
	return RouteFor(confidence, c.thresholds)
}

// History returns the retained classifications, oldest first.
func (c *Classifier) History() []Classification {
	return c.history.Items()
}

// ExtractParameters pulls paths, extensions and the command verb out of input.
func (c *Classifier) ExtractParameters(input string, intent Intent) Parameters {
	lower := strings.ToLower(input)
	params := Parameters{
		FilePaths:      filePathPattern.FindAllString(input, -1),
		DirectoryPaths: dirPathPattern.FindAllString(input, -1),
		FileExtensions: unique(extensionPattern.FindAllString(lower, -1)),
	}

	if intent != IntentExplicitCommand {
		return params
	}
	for _, p := range explicitPatterns {
		if p.re.MatchString(lower) {
			params.Command = p.name
			break
		}
	}
	trimmed := strings.TrimSpace(lower)
	if c.prefix != "" && strings.HasPrefix(trimmed, c.prefix) {
		fields := strings.Fields(strings.TrimPrefix(trimmed, c.prefix))
		if len(fields) > 0 {
			params.SlashCommand = fields[0]
		}
	}
	return params
}

func (c *Classifier) determineIntent(lower string) Intent {
	if c.prefix != "" && strings.HasPrefix(lower, c.prefix) {
		return IntentExplicitCommand
	}
	if countMatches(explicitPatterns, lower) > 0 {
		return IntentExplicitCommand
	}
	if countMatches(implicitPatterns, lower) > 0 {
		return IntentImplicitRequest
	}
	for _, k := range keywordIntents {
		if containsAny(lower, k.keywords) {
			return k.intent
		}
	}
	return IntentAmbiguous
}

func calculateConfidence(lower string, intent Intent) float64 {
	switch intent {
	case IntentExplicitCommand:
		return 1.0
	case IntentAmbiguous:
		return 0.3
	}

	if e := countMatches(explicitPatterns, lower); e > 0 {
		return math.Min(0.8, 0.6+0.1*float64(e))
	}
	if i := countMatches(implicitPatterns, lower); i > 0 {
		return math.Min(0.6, 0.4+0.1*float64(i))
	}
	return 0.5
}

// RouteFor is the routing step function: at or above Execute runs
// immediately, at or above Confirm asks for confirmation, anything lower
// presents options.
func RouteFor(confidence float64, t config.Thresholds) Routing {
	switch {
	case confidence >= t.Execute:
		return RouteExecute
	case confidence >= t.Confirm:
		return RouteConfirm
	default:
		return RouteClarify
	}
}

// DetectOperationType returns the first operation whose indicators appear in
// the lower-cased input.
func DetectOperationType(lower string) OperationType {
	for _, group := range operationIndicators {
		if containsAny(lower, group.indicators) {
			return group.op
		}
	}
	return OperationNone
}

func evaluateContext(lower string, ctx *Context) ContextInfo {
	info := ContextInfo{
		FileExtensions: extensionPattern.FindAllString(lower, -1),
		DetectedPaths:  filePathPattern.FindAllString(lower, -1),
	}
	if ctx != nil {
		info.HasContext = true
		info.CurrentDirectory = ctx.CurrentDirectory
		info.ProjectType = ctx.ProjectType
		info.RecentOperations = append([]string(nil), ctx.RecentOperations...)
	}
	return info
}

func countMatches(patterns []verbPattern, lower string) int {
	n := 0
	for _, p := range patterns {
		if p.re.MatchString(lower) {
			n++
		}
	}
	return n
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func unique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
