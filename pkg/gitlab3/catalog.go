package gitlab3

import (
	"context"
	"fmt"
	"net/http"
)

var projectOptionalParams = []string{
	"description",
	"default_branch",
	"issues_enabled",
	"wall_enabled",
	"merge_requests_enabled",
	"wiki_enabled",
	"snippets_enabled",
	"public",
}

// GitLab returns the GitLab v3 resource tree. Every call returns a fresh
// copy, so callers may extend it before binding.
func GitLab() ResourceDefinition {
	return ResourceDefinition{
		Name: "gitlab",
		ExtraActions: []ActionDefinition{
			{
				Name:           "add_project_for_user",
				URL:            "/projects/user/:user_id",
				Method:         http.MethodPost,
				URLParams:      []string{"user_id"},
				RequiredParams: []string{"name"},
				OptionalParams: projectOptionalParams,
				Wrapper:        wrapResult("project"),
			},
			{
				Name:           "find_projects_by_name",
				URL:            "/projects/search/:query",
				Method:         http.MethodGet,
				URLParams:      []string{"query"},
				OptionalParams: []string{"per_page", "page"},
				Wrapper:        wrapResults("project"),
			},
		},
		SubResources: []ResourceDefinition{
			{
				Name:         "current_user",
				URL:          "/user",
				Actions:      ActionGet,
				SubResources: []ResourceDefinition{sshKey("ssh_key", ActionList|ActionGet|ActionCreate|ActionDelete)},
			},
			{
				Name:    "issue",
				URL:     "/issues",
				Actions: ActionList,
			},
			group(),
			{
				Name:           "system_hook",
				URL:            "/hooks/:id",
				Actions:        ActionList | ActionCreate | ActionDelete,
				RequiredParams: []string{"url"},
				ExtraActions: []ActionDefinition{
					{Name: "test", Method: http.MethodGet},
				},
			},
			project(),
			{
				Name:           "user",
				URL:            "/users/:id",
				Actions:        ActionAll,
				RequiredParams: []string{"email", "password", "username", "name"},
				OptionalParams: []string{
					"skype",
					"linkedin",
					"twitter",
					"projects_limit",
					"extern_uid",
					"provider",
					"bio",
					"admin",
					"can_create_group",
				},
				SubResources: []ResourceDefinition{sshKey("ssh_key", ActionCreate)},
			},
			{
				Name:           "team",
				URL:            "/user_teams/:id",
				Actions:        ActionList | ActionGet | ActionCreate,
				RequiredParams: []string{"name", "path"},
				SubResources: []ResourceDefinition{
					member(ActionAll),
					{
						Name:           "project",
						URL:            "/projects/:project_id",
						Actions:        ActionList | ActionGet | ActionCreate | ActionDelete,
						RequiredParams: []string{"project_id", "greatest_access_level"},
					},
				},
			},
		},
	}
}

func sshKey(name string, actions Action) ResourceDefinition {
	return ResourceDefinition{
		Name:           name,
		URL:            "/keys/:id",
		Actions:        actions,
		RequiredParams: []string{"title", "key"},
	}
}

func member(actions Action) ResourceDefinition {
	return ResourceDefinition{
		Name:           "member",
		URL:            "/members/:user_id",
		Actions:        actions,
		RequiredParams: []string{"user_id", "access_level"},
	}
}

func note(name string) ResourceDefinition {
	return ResourceDefinition{
		Name:           name,
		URL:            "/notes/:note_id",
		Actions:        ActionList | ActionGet | ActionCreate,
		RequiredParams: []string{"body"},
	}
}

func group() ResourceDefinition {
	return ResourceDefinition{
		Name:           "group",
		URL:            "/groups/:id",
		Actions:        ActionList | ActionGet | ActionCreate | ActionDelete,
		RequiredParams: []string{"name", "path"},
		ExtraActions: []ActionDefinition{
			{
				Name:      "transfer_project",
				URL:       "/projects/:project_id",
				Method:    http.MethodPost,
				URLParams: []string{"project_id"},
			},
		},
		SubResources: []ResourceDefinition{member(ActionList | ActionCreate | ActionDelete)},
	}
}

func project() ResourceDefinition {
	return ResourceDefinition{
		Name:           "project",
		URL:            "/projects/:id",
		Actions:        ActionList | ActionGet | ActionCreate | ActionDelete,
		RequiredParams: []string{"name"},
		OptionalParams: projectOptionalParams,
		ExtraActions: []ActionDefinition{
			{
				Name:      "fork_from",
				URL:       "/fork/:forked_from_id",
				Method:    http.MethodPost,
				URLParams: []string{"forked_from_id"},
			},
			{
				Name:   "delete_fork",
				URL:    "/fork",
				Method: http.MethodDelete,
			},
			{
				Name:           "get_blob",
				URL:            "/repository/commits/:sha_or_ref_name/blob",
				Method:         http.MethodGet,
				URLParams:      []string{"sha_or_ref_name"},
				RequiredParams: []string{"filepath"},
			},
			{
				Name:      "protect_branch",
				URL:       "/repository/branches/:branch/protect",
				Method:    http.MethodPut,
				URLParams: []string{"branch"},
				Wrapper:   protectBranchByName(true),
			},
			{
				Name:      "unprotect_branch",
				URL:       "/repository/branches/:branch/unprotect",
				Method:    http.MethodPut,
				URLParams: []string{"branch"},
				Wrapper:   protectBranchByName(false),
			},
		},
		SubResources: []ResourceDefinition{
			{
				Name:    "branch",
				Plural:  "branches",
				URL:     "/repository/branches/:branch",
				KeyName: "name",
				Actions: ActionList | ActionGet,
				ExtraActions: []ActionDefinition{
					{Name: "protect", URL: "/protect", Method: http.MethodPut, Wrapper: markProtected(true)},
					{Name: "unprotect", URL: "/unprotect", Method: http.MethodPut, Wrapper: markProtected(false)},
				},
			},
			sshKey("deploy_key", ActionList|ActionGet|ActionCreate|ActionDelete),
			{
				Name:    "event",
				URL:     "/events",
				Actions: ActionList,
			},
			{
				Name:           "hook",
				URL:            "/hooks/:id",
				Actions:        ActionAll,
				RequiredParams: []string{"url"},
			},
			{
				Name:           "issue",
				URL:            "/issues/:issue_id",
				Actions:        ActionList | ActionGet | ActionCreate | ActionUpdate,
				RequiredParams: []string{"title"},
				OptionalParams: []string{"description", "assignee_id", "milestone_id", "labels", "state_event"},
				ExtraActions: []ActionDefinition{
					stateEvent("close", "closed"),
					stateEvent("reopen", "reopened"),
				},
				SubResources: []ResourceDefinition{note("note")},
			},
			member(ActionAll),
			{
				Name:           "merge_request",
				URL:            "/merge_requests/:merge_request_id",
				Actions:        ActionList | ActionGet | ActionCreate | ActionUpdate,
				RequiredParams: []string{"source_branch", "target_branch", "title"},
				OptionalParams: []string{"assignee_id"},
				ExtraActions: []ActionDefinition{
					{
						Name:           "post_comment",
						URL:            "/comments",
						Method:         http.MethodPost,
						RequiredParams: []string{"note"},
					},
				},
				SubResources: []ResourceDefinition{note("note")},
			},
			{
				Name:           "milestone",
				URL:            "/milestones/:milestone_id",
				Actions:        ActionList | ActionGet | ActionCreate | ActionUpdate,
				RequiredParams: []string{"title"},
				OptionalParams: []string{"description", "due_date", "state_event"},
			},
			{
				Name:           "snippet",
				URL:            "/snippets/:snippet_id",
				Actions:        ActionAll,
				RequiredParams: []string{"title", "file_name", "code"},
				OptionalParams: []string{"lifetime"},
				ExtraActions: []ActionDefinition{
					{Name: "raw", URL: "/raw", Method: http.MethodGet},
					{Name: "get_raw", URL: "/raw", Method: http.MethodGet},
				},
				SubResources: []ResourceDefinition{note("note")},
			},
			{
				Name:    "tag",
				URL:     "/repository/tags",
				Actions: ActionList,
			},
			{
				Name:           "file",
				URL:            "/repository/tree",
				Actions:        ActionList,
				OptionalParams: []string{"path", "ref_name"},
			},
			{
				Name:           "commit",
				URL:            "/repository/commits/:sha",
				Actions:        ActionList | ActionGet,
				OptionalParams: []string{"ref_name"},
				ExtraActions: []ActionDefinition{
					{Name: "diff", URL: "/diff", Method: http.MethodGet},
					{Name: "get_diff", URL: "/diff", Method: http.MethodGet},
				},
			},
			note("wall_note"),
		},
	}
}

// stateEvent binds an issue transition. The wrapper supplies state_event
// itself and mirrors the new state onto the issue on success.
func stateEvent(event, stateAfter string) ActionDefinition {
	return ActionDefinition{
		Name:           event,
		Method:         http.MethodPut,
		RequiredParams: []string{"state_event"},
		Wrapper: func(next ActionFunc, _ string) ActionFunc {
			return func(ctx context.Context, self Object, args []any, params Params) (any, error) {
				result, err := next(ctx, self, append(append([]any(nil), args...), event), params)
				if err != nil {
					return nil, err
				}

				self.SetField("state", stateAfter)

				return result, nil
			}
		},
	}
}

// protectBranchByName accepts a branch name or a branch object. A branch
// object gets its protected field updated once the call succeeded.
func protectBranchByName(protected bool) ActionWrapper {
	return func(next ActionFunc, _ string) ActionFunc {
		return func(ctx context.Context, self Object, args []any, params Params) (any, error) {
			if len(args) == 0 {
				return next(ctx, self, args, params)
			}

			branch, isObject := args[0].(Object)

			callArgs := append([]any(nil), args...)
			if isObject {
				callArgs[0] = branch.ID()
			}

			result, err := next(ctx, self, callArgs, params)
			if err != nil {
				return nil, err
			}

			if isObject {
				branch.SetField("protected", protected)
			}

			return result, nil
		}
	}
}

func markProtected(protected bool) ActionWrapper {
	return func(next ActionFunc, _ string) ActionFunc {
		return func(ctx context.Context, self Object, args []any, params Params) (any, error) {
			result, err := next(ctx, self, args, params)
			if err != nil {
				return nil, err
			}

			self.SetField("protected", protected)

			return result, nil
		}
	}
}

// wrapResult turns the payload into an instance of the named sub-resource of
// the owner.
func wrapResult(resource string) ActionWrapper {
	return func(next ActionFunc, owner string) ActionFunc {
		return func(ctx context.Context, self Object, args []any, params Params) (any, error) {
			result, err := next(ctx, self, args, params)
			if err != nil {
				return nil, err
			}

			wrapped, err := self.Wrap(resource, result)
			if err != nil {
				return nil, fmt.Errorf("%s: wrapping %s: %w", owner, resource, err)
			}

			return wrapped, nil
		}
	}
}

// wrapResults turns a list payload into instances of the named sub-resource.
func wrapResults(resource string) ActionWrapper {
	return func(next ActionFunc, owner string) ActionFunc {
		return func(ctx context.Context, self Object, args []any, params Params) (any, error) {
			result, err := next(ctx, self, args, params)
			if err != nil {
				return nil, err
			}

			items, ok := result.([]any)
			if !ok {
				return nil, WrapError(KindServerError, ErrUnexpectedPayload, "%s: expected a list of %s, got %T", owner, resource, result)
			}

			wrapped := make([]Object, 0, len(items))

			for _, item := range items {
				obj, err := self.Wrap(resource, item)
				if err != nil {
					return nil, fmt.Errorf("%s: wrapping %s: %w", owner, resource, err)
				}

				wrapped = append(wrapped, obj)
			}

			return wrapped, nil
		}
	}
}
