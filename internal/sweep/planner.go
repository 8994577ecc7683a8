package sweep

// asciiFirst..asciiLast span the printable ASCII range used for the default
// shard split when multi-read runs without explicit prefixes.
const (
	asciiFirst = '!' // 33
	asciiLast  = '~' // 126
)

// planShards computes the listing scopes for a run. Explicit prefixes are
// used as-is (deduplicated, order preserved) in both modes. Without
// prefixes, single-read lists the whole bucket as one shard and multi-read
// splits it into one shard per printable ASCII lead character.
func planShards(prefixes []string, multiRead bool) []string {
	if cleaned := dedupe(prefixes); len(cleaned) > 0 {
		return cleaned
	}

	if !multiRead {
		return []string{""}
	}

	shards := make([]string, 0, asciiLast-asciiFirst+1)
	for c := byte(asciiFirst); c <= byte(asciiLast); c++ {
		shards = append(shards, string(c))
	}
	return shards
}

func dedupe(prefixes []string) []string {
	seen := make(map[string]struct{}, len(prefixes))
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
