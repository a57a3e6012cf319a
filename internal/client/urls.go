package client

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/spf13/cast"
)

var placeholderPattern = regexp.MustCompile(`:[^/]+`)

// ownershipKeys returns the identities of instance and its ancestors,
// outermost first. The walk stops at the first instance without identity.
func ownershipKeys(instance *Resource) []any {
	var keys []any

	for current := instance; current != nil; current = current.parent {
		if current.id == nil || current.id == "" {
			break
		}

		keys = append(keys, current.id)
	}

	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}

	return keys
}

// resolveURL fills the placeholders of template. The keys are the ownership
// chain of instance followed by additional; only the trailing keys matching
// the placeholder count are used, so an over-qualified chain is fine.
func resolveURL(template string, instance *Resource, additional ...any) (string, error) {
	slots := placeholderPattern.FindAllStringIndex(template, -1)
	if len(slots) == 0 {
		return template, nil
	}

	keys := append(ownershipKeys(instance), additional...)
	if len(keys) < len(slots) {
		return "", gitlab3.Errorf(gitlab3.KindMalformedTemplate,
			"url %q has %d placeholders but only %d keys are available", template, len(slots), len(keys))
	}

	keys = keys[len(keys)-len(slots):]

	var path strings.Builder

	last := 0

	for i, slot := range slots {
		text, err := cast.ToStringE(keys[i])
		if err != nil {
			return "", &gitlab3.Error{Kind: gitlab3.KindMalformedTemplate, Message: "url key " + template[slot[0]:slot[1]], Err: err}
		}

		path.WriteString(template[last:slot[0]])
		path.WriteString(url.PathEscape(text))

		last = slot[1]
	}

	path.WriteString(template[last:])

	return path.String(), nil
}

// stripPlaceholder cuts template at its first placeholder segment.
func stripPlaceholder(template string) string {
	if idx := strings.Index(template, "/:"); idx >= 0 {
		return template[:idx]
	}

	return template
}
