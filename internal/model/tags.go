package model

import (
	"fmt"
	"strings"

	"github.com/sakif/samewave/internal/apperror"
)

const (
	MaxTags      = 8
	MaxTagLength = 32
)

// NormalizeTags turns a tag list into an ordered set: tags are trimmed,
// empties dropped and duplicates (compared case-insensitively) removed with
// the first spelling kept. The result is never nil so it encodes as [].
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		if len(tag) > MaxTagLength {
			return nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("tag %q must be %d characters or fewer", tag, MaxTagLength))
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}

	if len(out) > MaxTags {
		return nil, apperror.ValidationFailed("tags",
			fmt.Sprintf("at most %d tags are allowed", MaxTags))
	}
	return out, nil
}
