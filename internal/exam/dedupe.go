package exam

import (
	"sort"
	"strings"

	"examgen/internal/models"
)

// NormalizeTopic reduces question text to a comparable fingerprint: leading
// and trailing whitespace stripped, internal whitespace runs folded to single
// spaces, lower-cased.
func NormalizeTopic(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// TopicSet tracks normalized question fingerprints accumulated across
// batches. It is the only mechanism providing cross-batch consistency: the
// set is fed back to the model as an avoid-list, and filters duplicates the
// model generates anyway.
type TopicSet map[string]struct{}

// NewTopicSet builds a set from already-normalized keys.
func NewTopicSet(keys ...string) TopicSet {
	s := make(TopicSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s TopicSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

func (s TopicSet) Add(key string) {
	s[key] = struct{}{}
}

// Clone returns an independent copy of the set.
func (s TopicSet) Clone() TopicSet {
	out := make(TopicSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Sorted returns the keys in lexical order, for stable prompt text.
func (s TopicSet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dedupe filters candidates against seen, keeping the first occurrence of
// each normalized question. Duplicates across model calls are expected, so
// they are dropped silently rather than treated as errors. Accepted items
// keep their relative order; seen is not mutated and the updated set is
// returned instead.
func Dedupe(seen TopicSet, candidates []models.ExamItem) ([]models.ExamItem, TopicSet) {
	updated := seen.Clone()
	accepted := make([]models.ExamItem, 0, len(candidates))
	for _, item := range candidates {
		key := NormalizeTopic(item.Question)
		if updated.Contains(key) {
			continue
		}
		updated.Add(key)
		accepted = append(accepted, item)
	}
	return accepted, updated
}
