package sweep

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dev-tams/sweepkit/internal/storage/object"
)

// compilePatterns compiles each pattern string, dropping any that fail to
// compile. The run proceeds with the remaining valid patterns, or with none.
func compilePatterns(patterns []string, log zerolog.Logger) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			log.Warn().Str("pattern", p).Err(err).Msg("dropping pattern that does not compile")
			continue
		}
		out = append(out, re)
	}
	return out
}

// matchCandidates scans the full result set once and keeps objects whose key
// matches any pattern. Each key appears at most once in the output, no
// matter how many patterns match it or how often overlapping shards listed
// it.
func matchCandidates(objects []object.Info, patterns []*regexp.Regexp) []object.Info {
	if len(patterns) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(objects))
	var out []object.Info
	for _, obj := range objects {
		if _, ok := seen[obj.Key]; ok {
			continue
		}
		for _, re := range patterns {
			if re.MatchString(obj.Key) {
				seen[obj.Key] = struct{}{}
				out = append(out, obj)
				break
			}
		}
	}
	return out
}
