package client

import (
	"testing"

	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(ids ...any) *Resource {
	current := &Resource{}

	for _, id := range ids {
		current = &Resource{id: id, parent: current}
	}

	return current
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		template   string
		instance   *Resource
		additional []any
		expected   string
	}{
		{
			name:     "no placeholders",
			template: "/projects",
			instance: chain(),
			expected: "/projects",
		},
		{
			name:       "additional key only",
			template:   "/projects/:id",
			instance:   chain(),
			additional: []any{5},
			expected:   "/projects/5",
		},
		{
			name:       "chain outermost first then additional",
			template:   "/projects/:id/merge_requests/:merge_request_id/notes/:note_id",
			instance:   chain(5, 7),
			additional: []any{9},
			expected:   "/projects/5/merge_requests/7/notes/9",
		},
		{
			name:     "chain fills everything",
			template: "/projects/:id/issues/:issue_id",
			instance: chain(int64(5), int64(12)),
			expected: "/projects/5/issues/12",
		},
		{
			name:       "over-qualified chain keeps trailing keys",
			template:   "/user/keys/:id",
			instance:   chain(42),
			additional: []any{3},
			expected:   "/user/keys/3",
		},
		{
			name:       "slashes are escaped",
			template:   "/projects/:id/repository/branches/:branch",
			instance:   chain("group/project"),
			additional: []any{"feature/login"},
			expected:   "/projects/group%2Fproject/repository/branches/feature%2Flogin",
		},
		{
			name:     "nil instance",
			template: "/users",
			instance: nil,
			expected: "/users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveURL(tt.template, tt.instance, tt.additional...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveURL_TooFewKeys(t *testing.T) {
	t.Parallel()

	_, err := resolveURL("/projects/:id/issues/:issue_id", chain(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, gitlab3.ErrMalformedTemplate)
}

func TestOwnershipKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []any{1, 2, 3}, ownershipKeys(chain(1, 2, 3)))
	assert.Empty(t, ownershipKeys(chain()))
	assert.Equal(t, []any{"b"}, ownershipKeys(&Resource{id: "b", parent: &Resource{id: "", parent: chain("a")}}))
	assert.Empty(t, ownershipKeys(&Resource{id: nil, parent: chain(9)}))
}

func TestStripPlaceholder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/projects", stripPlaceholder("/projects/:id"))
	assert.Equal(t, "/repository/tags", stripPlaceholder("/repository/tags"))
	assert.Equal(t, "/user", stripPlaceholder("/user"))
	assert.Equal(t, "", stripPlaceholder("/:id"))
}
