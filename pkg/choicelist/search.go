package choicelist

import (
	"sort"
	"strings"
)

// Filter returns entries whose label contains query (case-insensitive).
// Prefix matches sort ahead of inner matches; otherwise source order holds.
// An empty query returns the leading entries. limit <= 0 means no limit.
func Filter(choices Choices, query string, limit int) Choices {
	query = strings.TrimSpace(query)
	if query == "" {
		return truncate(choices.Clone(), limit)
	}

	q := strings.ToLower(query)
	matches := make([]matchedChoice, 0, 32)
	for idx, choice := range choices {
		lowerLabel := strings.ToLower(choice.Label)
		if !strings.Contains(lowerLabel, q) {
			continue
		}
		matches = append(matches, matchedChoice{
			choice:   choice,
			isPrefix: strings.HasPrefix(lowerLabel, q),
			order:    idx,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].order < matches[j].order
	})

	out := make(Choices, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.choice)
	}
	return truncate(out, limit)
}

func truncate(choices Choices, limit int) Choices {
	if limit > 0 && len(choices) > limit {
		return choices[:limit]
	}
	if len(choices) == 0 {
		return nil
	}
	return choices
}

type matchedChoice struct {
	choice   Choice
	isPrefix bool
	order    int
}
