package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/gitlab3/internal/constants"
	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/fivetwenty-io/gitlab3/pkg/glclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// placeholderURL binds the resource tree when no host is configured.
const placeholderURL = "https://gitlab.example.com"

// resourceInfo is the structured form of one bound resource type.
type resourceInfo struct {
	Name       string   `json:"name"                 yaml:"name"`
	Parent     string   `json:"parent,omitempty"     yaml:"parent,omitempty"`
	URL        string   `json:"url"                  yaml:"url"`
	Collection string   `json:"collection"           yaml:"collection"`
	Operations []string `json:"operations,omitempty" yaml:"operations,omitempty"`
	Actions    []string `json:"actions,omitempty"    yaml:"actions,omitempty"`
}

// NewResourcesCommand creates the resources command
func NewResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources [NAME]",
		Short: "List the bound resource types",
		Long: `List every resource type of the API with its URL templates, the operations
it binds on its parent and its extra actions. No request is made.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := bindOffline(cmd)
			if err != nil {
				return err
			}

			types := conn.Types()
			if len(args) == 1 {
				types = filterTypes(types, args[0])
				if len(types) == 0 {
					return fmt.Errorf("%w: %s", gitlab3.ErrUnknownResource, args[0])
				}
			}

			infos := make([]resourceInfo, len(types))
			for i, typ := range types {
				infos[i] = describeType(typ)
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format != constants.FormatTable {
				return encodeStructured(cmd.OutOrStdout(), format, infos)
			}

			return renderTypesTable(cmd.OutOrStdout(), infos)
		},
	}
}

// bindOffline builds a connection only to inspect the bound types.
func bindOffline(cmd *cobra.Command) (*glclient.Connection, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	url := placeholderURL

	if _, host, err := resolveHost(loadConfig()); err == nil {
		if configured := buildConfig(host).URL; configured != "" {
			url = configured
		}
	}

	return glclient.New(ctx, &gitlab3.Config{URL: url})
}

func filterTypes(types []*glclient.ResourceType, name string) []*glclient.ResourceType {
	var matched []*glclient.ResourceType

	for _, typ := range types {
		if typ.Name() == name || typ.Definition().PluralName() == name {
			matched = append(matched, typ)
		}
	}

	return matched
}

func describeType(typ *glclient.ResourceType) resourceInfo {
	info := resourceInfo{
		Name:       typ.Name(),
		URL:        typ.QualifiedURL(),
		Collection: typ.UnqualifiedURL(),
		Actions:    typ.Actions(),
	}

	if typ.Parent() != nil {
		info.Parent = typ.Parent().Name()
	}

	for _, op := range typ.Operations() {
		info.Operations = append(info.Operations, op.Name)
	}

	return info
}

func renderTypesTable(w io.Writer, infos []resourceInfo) error {
	title := cases.Title(language.English)

	table := tablewriter.NewWriter(w)
	table.Header("Resource", "Parent", "URL", "Operations", "Actions")

	for _, info := range infos {
		_ = table.Append([]string{
			title.String(strings.ReplaceAll(info.Name, "_", " ")),
			info.Parent,
			info.URL,
			strings.Join(info.Operations, ", "),
			strings.Join(info.Actions, ", "),
		})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
