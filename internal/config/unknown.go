package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys are the valid dotted keys in the config file.
var knownKeys = map[string]bool{
	"credentials_file":    true,
	"endpoint":            true,
	"user_agent":          true,
	"timeout":             true,
	"requests_per_second": true,
	"sample_delay":        true,
	"log_level":           true,
	"ledger_path":         true,
	"twin":                true,
	"twin.listen":         true,
	"twin.strict_masks":   true,
}

// knownKeysList is the sorted slice form of knownKeys. Sorted for
// deterministic suggestions when two candidates have the same edit distance.
var knownKeysList = func() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}()

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns an
// error with "did you mean?" suggestions for each unknown key.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	for _, key := range md.Undecoded() {
		errs = append(errs, unknownKeyError(key.String()))
	}

	return errors.Join(errs...)
}

func unknownKeyError(key string) error {
	if suggestion := closestMatch(key, knownKeysList); suggestion != "" {
		return fmt.Errorf("unknown config key %q, did you mean %q?", key, suggestion)
	}

	if section, _, ok := strings.Cut(key, "."); ok && !knownKeys[section] {
		return fmt.Errorf("unknown config section %q", section)
	}

	return fmt.Errorf("unknown config key %q", key)
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
