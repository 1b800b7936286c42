// Package dedup finds duplicate books across a set of files, by content hash,
// ISBN, or fuzzy title/author similarity.
package dedup

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Strategy selects how duplicates are identified.
type Strategy int

const (
	// StrategyHash groups byte-identical files (xxhash64 over content).
	StrategyHash Strategy = iota
	// StrategyISBN groups files sharing a non-empty ISBN-13 or ISBN-10.
	StrategyISBN
	// StrategyFuzzy groups files whose normalized title+author token sets
	// overlap at or above the threshold.
	StrategyFuzzy
)

// ParseStrategy maps a user-supplied name to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "hash":
		return StrategyHash, nil
	case "isbn":
		return StrategyISBN, nil
	case "fuzzy":
		return StrategyFuzzy, nil
	default:
		return 0, fmt.Errorf("unknown dedup strategy %q (known: hash, isbn, fuzzy)", s)
	}
}

// Entry is one candidate file with the fields the strategies compare.
type Entry struct {
	Path    string
	Hash    uint64
	ISBN    string
	Title   string
	Authors []string
}

// Group is a set of entries considered duplicates of each other.
type Group struct {
	// Key names what the group matched on: the hash, the ISBN, or the
	// representative title.
	Key     string
	Entries []Entry
}

// HashFile computes the xxhash64 of a file's content, streaming.
func HashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Find groups duplicate entries. Only groups with two or more members are
// returned, in first-seen order.
func Find(entries []Entry, strategy Strategy, threshold float64) []Group {
	switch strategy {
	case StrategyHash:
		return groupBy(entries, func(e Entry) string {
			return fmt.Sprintf("%016x", e.Hash)
		})
	case StrategyISBN:
		return groupBy(entries, func(e Entry) string {
			return e.ISBN
		})
	case StrategyFuzzy:
		return fuzzyGroups(entries, threshold)
	default:
		return nil
	}
}

func groupBy(entries []Entry, key func(Entry) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, e := range entries {
		k := key(e)
		if k == "" {
			continue
		}
		if i, ok := index[k]; ok {
			groups[i].Entries = append(groups[i].Entries, e)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, Group{Key: k, Entries: []Entry{e}})
	}
	return prune(groups)
}

// fuzzyGroups clusters greedily: each entry joins the first existing group
// whose representative it resembles at or above the threshold.
func fuzzyGroups(entries []Entry, threshold float64) []Group {
	type cluster struct {
		tokens map[string]bool
		group  Group
	}
	var clusters []*cluster

next:
	for _, e := range entries {
		tokens := tokenize(e)
		if len(tokens) == 0 {
			continue
		}
		for _, c := range clusters {
			if similarity(tokens, c.tokens) >= threshold {
				c.group.Entries = append(c.group.Entries, e)
				continue next
			}
		}
		clusters = append(clusters, &cluster{
			tokens: tokens,
			group:  Group{Key: e.Title, Entries: []Entry{e}},
		})
	}

	groups := make([]Group, 0, len(clusters))
	for _, c := range clusters {
		groups = append(groups, c.group)
	}
	return prune(groups)
}

func prune(groups []Group) []Group {
	out := groups[:0]
	for _, g := range groups {
		if len(g.Entries) >= 2 {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func tokenize(e Entry) map[string]bool {
	tokens := make(map[string]bool)
	add := func(s string) {
		for _, w := range strings.Fields(strings.ToLower(s)) {
			w = strings.Trim(w, ".,:;!?\"'()[]")
			if w != "" {
				tokens[w] = true
			}
		}
	}
	add(e.Title)
	for _, a := range e.Authors {
		add(a)
	}
	return tokens
}

// similarity is the Jaccard index of two token sets.
func similarity(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for t := range a {
		if b[t] {
			common++
		}
	}
	union := len(a) + len(b) - common
	return float64(common) / float64(union)
}
