package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fivetwenty-io/gitlab3/internal/constants"
	"github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
	"github.com/fivetwenty-io/gitlab3/pkg/glclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// maxListColumns bounds the columns of a list table.
const maxListColumns = 6

func outputFormat() (string, error) {
	format := viper.GetString(outputKey)
	if format == "" {
		return constants.FormatTable, nil
	}

	if !isSupportedFormat(format) {
		return "", fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}

	return format, nil
}

func encodeStructured(w io.Writer, format string, value any) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	default:
		return yaml.NewEncoder(w).Encode(value)
	}
}

// renderResources prints a collection, one row per instance in table
// format.
func renderResources(w io.Writer, resources []*glclient.Resource) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if format != constants.FormatTable {
		if resources == nil {
			resources = []*glclient.Resource{}
		}

		return encodeStructured(w, format, resources)
	}

	if len(resources) == 0 {
		_, _ = fmt.Fprintln(w, "No resources found")

		return nil
	}

	columns := listColumns(resources[0])

	table := tablewriter.NewWriter(w)
	table.Header(toHeader(columns)...)

	for _, resource := range resources {
		row := make([]string, len(columns))
		for i, column := range columns {
			value, _ := resource.Field(column)
			row[i] = formatValue(value)
		}

		_ = table.Append(row)
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderResource prints one instance as a property table.
func renderResource(w io.Writer, resource *glclient.Resource) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if format != constants.FormatTable {
		return encodeStructured(w, format, resource)
	}

	fields := resource.Fields()

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		_ = table.Append([]string{key, formatValue(value)})
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderResult prints whatever an extra action returned.
func renderResult(w io.Writer, result any) error {
	switch typed := result.(type) {
	case nil:
		_, _ = fmt.Fprintln(w, "OK")

		return nil
	case string:
		_, _ = fmt.Fprintln(w, typed)

		return nil
	case *glclient.Resource:
		return renderResource(w, typed)
	case []gitlab3.Object:
		resources := make([]*glclient.Resource, 0, len(typed))

		for _, obj := range typed {
			if resource, ok := obj.(*glclient.Resource); ok {
				resources = append(resources, resource)
			}
		}

		return renderResources(w, resources)
	default:
		format, err := outputFormat()
		if err != nil {
			return err
		}

		if format == constants.FormatTable {
			format = constants.FormatJSON
		}

		return encodeStructured(w, format, typed)
	}
}

// listColumns picks the key field followed by the scalar fields of the
// first instance.
func listColumns(resource *glclient.Resource) []string {
	key := resource.Type().Definition().KeyField()
	columns := []string{key}

	fields := resource.Fields()

	for _, name := range fields.Keys() {
		if len(columns) == maxListColumns {
			break
		}

		if name == key {
			continue
		}

		value, _ := fields.Get(name)
		if isScalar(value) {
			columns = append(columns, name)
		}
	}

	return columns
}

func isScalar(value any) bool {
	switch value.(type) {
	case *gitlab3.Fields, []any:
		return false
	default:
		return true
	}
}

func formatValue(value any) string {
	var text string

	switch typed := value.(type) {
	case nil:
		return ""
	case *gitlab3.Fields, []any:
		data, err := json.Marshal(typed)
		if err != nil {
			return constants.NotAvailable
		}

		text = string(data)
	default:
		text = cast.ToString(typed)
	}

	return truncate(text)
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= constants.StringTruncationLength {
		return text
	}

	return string(runes[:constants.StringTruncationLength-3]) + "..."
}

func toHeader(columns []string) []any {
	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}

	return header
}
