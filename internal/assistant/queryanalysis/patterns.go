// internal/assistant/queryanalysis/patterns.go
package queryanalysis

import (
	"regexp"

	"workspace-assistant/internal/models"
)

// Entity extraction is table-driven: each family is a list of alternative
// expressions run against the same lower-cased query. Keeping the tables as
// data lets each pattern be unit-tested independently of the classifier.

var channelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`#([a-z0-9][a-z0-9_-]*)`),
	regexp.MustCompile(`\bchannel\s+#?([a-z0-9][a-z0-9_-]*)`),
	regexp.MustCompile(`\bin\s+(?:the\s+)?#?([a-z0-9][a-z0-9_-]*)`),
}

var userPatterns = []*regexp.Regexp{
	regexp.MustCompile(`@([a-z0-9][a-z0-9._-]*)`),
	regexp.MustCompile(`\buser\s+@?([a-z0-9][a-z0-9._-]*)`),
	regexp.MustCompile(`\bfrom\s+@?([a-z0-9][a-z0-9._-]*)`),
	regexp.MustCompile(`\bdid\s+@?([a-z0-9][a-z0-9._-]*)\s+(?:say|post|send|share|write)`),
}

// Timeframe families are ordered: the first expression with a match wins and
// the whole matched phrase is kept verbatim. Only "today" and "recent" are
// later interpreted by the filter builder.
var timeframePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\btoday\b`),
	regexp.MustCompile(`\byesterday\b`),
	regexp.MustCompile(`\bthis\s+week\b`),
	regexp.MustCompile(`\blast\s+week\b`),
	regexp.MustCompile(`\bthis\s+month\b`),
	regexp.MustCompile(`\blast\s+\d+\s+days?\b`),
	regexp.MustCompile(`\brecent\b`),
}

// entityStopwords filters out grammar and timeframe words the looser channel
// and user expressions ("in X", "from X") otherwise pick up.
var entityStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "that": true,
	"my": true, "our": true, "your": true, "it": true,
	"today": true, "yesterday": true, "last": true, "next": true,
	"recent": true, "here": true, "there": true,
}

// typePatternEntry binds a query type to its explicit phrase patterns.
type typePatternEntry struct {
	Type     models.QueryType
	Patterns []*regexp.Regexp
}

// typePatterns is checked in order; the first family with any match wins.
// Aggregate and summary phrasings come first so that a count-style query is
// classified as count_query regardless of which entities it mentions.
var typePatterns = []typePatternEntry{
	{
		Type: models.QueryTypeCount,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bhow\s+many\b`),
			regexp.MustCompile(`\bcount\s+(?:of|the)\b`),
			regexp.MustCompile(`\bnumber\s+of\b`),
			regexp.MustCompile(`\btotal\s+(?:number\s+of\s+)?messages\b`),
		},
	},
	{
		Type: models.QueryTypeStatistical,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bwho\s+(?:sent|posted|wrote|shared)\s+the\s+(?:most|least|fewest)\b`),
			regexp.MustCompile(`\b(?:most|least)\s+active\b`),
			regexp.MustCompile(`\btop\s+(?:posters?|users?|contributors?)\b`),
			regexp.MustCompile(`\bper\s+user\b`),
			regexp.MustCompile(`\bleaderboard\b`),
			regexp.MustCompile(`\bmessage\s+(?:stats|statistics|breakdown)\b`),
		},
	},
	{
		Type: models.QueryTypeSummary,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bsummar(?:y|ize|ise)\b`),
			regexp.MustCompile(`\brecap\b`),
			regexp.MustCompile(`\bcatch\s+me\s+up\b`),
			regexp.MustCompile(`\btl;?dr\b`),
		},
	},
	{
		Type: models.QueryTypeTopic,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(?:discussions?|conversations?|threads?)\s+(?:about|on|regarding)\b`),
			regexp.MustCompile(`\bwhat\s+(?:topics|themes)\b`),
			regexp.MustCompile(`\bany\s+mentions?\s+of\b`),
		},
	},
	{
		Type: models.QueryTypeWorkspaceInfo,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bworkspace\s+(?:overview|info|information|structure|members)\b`),
			regexp.MustCompile(`\btell\s+me\s+about\s+(?:this|the|our)\s+workspace\b`),
			regexp.MustCompile(`\bwhat\s+is\s+this\s+workspace\b`),
		},
	},
	{
		Type: models.QueryTypeChannelContext,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bwhat(?:'s|\s+is|\s+has\s+been)?\s+(?:happening|going\s+on)\s+in\b`),
			regexp.MustCompile(`\bchannel\s+(?:activity|history|context|overview)\b`),
			regexp.MustCompile(`\bin\s+this\s+channel\b`),
		},
	},
	{
		Type: models.QueryTypeUserContext,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bwhat\s+did\s+@?[a-z0-9._-]+\s+say\b`),
			regexp.MustCompile(`\bmessages?\s+from\s+@?[a-z0-9._-]+`),
			regexp.MustCompile(`\bwhat\s+has\s+@?[a-z0-9._-]+\s+(?:been\s+)?(?:posted|posting|shared|sharing|said|saying)\b`),
		},
	},
}
