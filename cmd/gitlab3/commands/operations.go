package commands

import (
	"fmt"

	"github.com/fivetwenty-io/gitlab3/internal/constants"
	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/fivetwenty-io/gitlab3/pkg/glclient"
	"github.com/spf13/cobra"
)

// withSession runs fn against a connected session and its owner instance.
func withSession(cmd *cobra.Command, refs []string, fn func(s *session, owner *glclient.Resource) error) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.cleanup()

	owner, err := s.owner(refs)
	if err != nil {
		return err
	}

	return fn(s, owner)
}

func addOwnerFlag(cmd *cobra.Command, refs *[]string) {
	cmd.Flags().StringArrayVar(refs, "in", nil, "owner reference as NAME=ID, repeat from the outermost (e.g. --in project=5 --in issue=12)")
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var (
		refs    []string
		filters []string
		limit   int
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "list PLURAL",
		Short: "List a collection",
		Long: `List a collection such as projects, issues or notes.

Without --limit, --page or --per-page every page is fetched.`,
		Example: `  gitlab3 list projects
  gitlab3 list issues --in project=group/app --filter state=opened
  gitlab3 list notes --in project=5 --in issue=12 --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseKeyValues(filters)
			if err != nil {
				return err
			}

			return withSession(cmd, refs, func(s *session, owner *glclient.Resource) error {
				resources, err := owner.List(s.ctx, args[0], &gitlab3.ListOptions{
					Limit:   limit,
					Page:    page,
					PerPage: perPage,
					Filters: params,
				})
				if err != nil {
					return err
				}

				return renderResources(cmd.OutOrStdout(), resources)
			})
		},
	}

	addOwnerFlag(cmd, &refs)
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "query parameter as KEY=VALUE, sent with every page")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	cmd.Flags().IntVar(&page, "page", 0, "fetch this page only")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "page size")

	return cmd
}

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var (
		refs  []string
		query []string
	)

	cmd := &cobra.Command{
		Use:   "get NAME [ID]",
		Short: "Show one resource",
		Long:  "Show one resource. Singletons such as current_user take no ID.",
		Example: `  gitlab3 get project group/app
  gitlab3 get branch master --in project=5
  gitlab3 get current_user`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseKeyValues(query)
			if err != nil {
				return err
			}

			var id any
			if len(args) == 2 {
				id = args[1]
			}

			return withSession(cmd, refs, func(s *session, owner *glclient.Resource) error {
				resource, err := owner.Get(s.ctx, args[0], id, params)
				if err != nil {
					return err
				}

				return renderResource(cmd.OutOrStdout(), resource)
			})
		},
	}

	addOwnerFlag(cmd, &refs)
	cmd.Flags().StringArrayVar(&query, "query", nil, "query parameter as KEY=VALUE")

	return cmd
}

// NewFindCommand creates the find command
func NewFindCommand() *cobra.Command {
	var (
		refs    []string
		filters []string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "find NAME KEY=VALUE...",
		Short: "Find resources by field values",
		Long: `Find the first resource whose fields equal every KEY=VALUE criterion.
Pages are fetched until a match is found; --all walks the whole collection.`,
		Example: `  gitlab3 find project path=app
  gitlab3 find member username=alice --in group=3 --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return constants.ErrNoFindCriteria
			}

			criteria, err := parseKeyValues(args[1:])
			if err != nil {
				return err
			}

			params, err := parseKeyValues(filters)
			if err != nil {
				return err
			}

			opts := &gitlab3.FindOptions{Filters: params}

			return withSession(cmd, refs, func(s *session, owner *glclient.Resource) error {
				if all {
					resources, err := owner.FindAll(s.ctx, args[0], criteria, opts)
					if err != nil {
						return err
					}

					return renderResources(cmd.OutOrStdout(), resources)
				}

				resource, err := owner.Find(s.ctx, args[0], criteria, opts)
				if err != nil {
					return err
				}

				if resource == nil {
					return fmt.Errorf("%s matching %v: %w", args[0], args[1:], constants.ErrNotFound)
				}

				return renderResource(cmd.OutOrStdout(), resource)
			})
		},
	}

	addOwnerFlag(cmd, &refs)
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "query parameter as KEY=VALUE, sent with every page")
	cmd.Flags().BoolVar(&all, "all", false, "return every match")

	return cmd
}

// NewCreateCommand creates the create command
func NewCreateCommand() *cobra.Command {
	var (
		refs   []string
		params []string
	)

	cmd := &cobra.Command{
		Use:   "create NAME [VALUE...]",
		Short: "Create a resource",
		Long: `Create a resource. Positional values fill the required parameters and then
the optional ones in declared order; see "gitlab3 resources NAME".`,
		Example: `  gitlab3 create project app --param visibility_level=10
  gitlab3 create issue "Broken build" --in project=5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			return withSession(cmd, refs, func(s *session, owner *glclient.Resource) error {
				resource, err := owner.Create(s.ctx, args[0], body, toArgs(args[1:])...)
				if err != nil {
					return err
				}

				return renderResource(cmd.OutOrStdout(), resource)
			})
		},
	}

	addOwnerFlag(cmd, &refs)
	cmd.Flags().StringArrayVar(&params, "param", nil, "request parameter as KEY=VALUE")

	return cmd
}

// NewUpdateCommand creates the update command
func NewUpdateCommand() *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:   "update NAME ID KEY=VALUE...",
		Short: "Update a resource",
		Long: `Fetch a resource, change the given fields and save it. Only fields present
in the fetched payload are sent.`,
		Example: `  gitlab3 update issue 12 title="Flaky build" --in project=5`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseKeyValues(args[2:])
			if err != nil {
				return err
			}

			return withSession(cmd, refs, func(s *session, owner *glclient.Resource) error {
				resource, err := owner.Get(s.ctx, args[0], args[1], nil)
				if err != nil {
					return err
				}

				for key, value := range changes {
					resource.SetField(key, value)
				}

				err = owner.UpdateResource(s.ctx, args[0], resource)
				if err != nil {
					return err
				}

				return renderResource(cmd.OutOrStdout(), resource)
			})
		},
	}

	addOwnerFlag(cmd, &refs)

	return cmd
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:     "delete NAME ID",
		Short:   "Delete a resource",
		Example: `  gitlab3 delete hook 3 --in project=5`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, refs, func(s *session, owner *glclient.Resource) error {
				resource, err := owner.Ref(args[0], args[1])
				if err != nil {
					return err
				}

				err = owner.DeleteResource(s.ctx, args[0], resource)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", args[0], args[1])

				return nil
			})
		},
	}

	addOwnerFlag(cmd, &refs)

	return cmd
}

// NewCallCommand creates the call command
func NewCallCommand() *cobra.Command {
	var (
		refs   []string
		params []string
	)

	cmd := &cobra.Command{
		Use:   "call ACTION [VALUE...]",
		Short: "Invoke an extra action",
		Long: `Invoke an extra action on the instance addressed by --in, or on the root
when --in is omitted. Positional values fill the URL and required
parameters in declared order.`,
		Example: `  gitlab3 call close --in project=5 --in issue=12
  gitlab3 call protect_branch master --in project=5
  gitlab3 call get_blob master README.md --in project=5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			optional, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			return withSession(cmd, refs, func(s *session, owner *glclient.Resource) error {
				result, err := owner.CallWithParams(s.ctx, args[0], optional, toArgs(args[1:])...)
				if err != nil {
					return err
				}

				return renderResult(cmd.OutOrStdout(), result)
			})
		},
	}

	addOwnerFlag(cmd, &refs)
	cmd.Flags().StringArrayVar(&params, "param", nil, "optional parameter as KEY=VALUE")

	return cmd
}
