package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/jsonapi-provider/pkg/dataprovider"
	"github.com/telhawk-systems/jsonapi-provider/pkg/output"
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(getManyCmd)
	rootCmd.AddCommand(referencesCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(verbsCmd)

	for _, c := range []*cobra.Command{listCmd, referencesCmd} {
		c.Flags().Int("page", 0, "Page number (page[number])")
		c.Flags().Int("per-page", 0, "Page size (page[size])")
		c.Flags().String("sort", "", "Sort field")
		c.Flags().String("order", "ASC", "Sort order: ASC or DESC")
		c.Flags().StringArray("filter", nil, "Filter as key=value (repeatable)")
	}
	for _, c := range []*cobra.Command{listCmd, getCmd, getManyCmd, referencesCmd} {
		c.Flags().StringSlice("include", nil, "Related resources to include")
		c.Flags().StringArray("fields", nil, "Sparse fieldset as type=a,b (repeatable)")
	}

	referencesCmd.Flags().String("target", "", "Field referencing the parent resource")
	referencesCmd.Flags().String("id", "", "Id of the parent resource")
	_ = referencesCmd.MarkFlagRequired("target")
	_ = referencesCmd.MarkFlagRequired("id")

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().String("data", "", "Record as JSON, or - to read it from stdin")
		_ = c.MarkFlagRequired("data")
	}
}

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List a resource collection (GET_LIST)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := collectionParams(cmd)
		if err != nil {
			return err
		}
		return runVerb(cmd, dataprovider.GetList, args[0], params)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Fetch one record (GET_ONE)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := includeParams(cmd)
		if err != nil {
			return err
		}
		params.ID = args[1]
		return runVerb(cmd, dataprovider.GetOne, args[0], params)
	},
}

var getManyCmd = &cobra.Command{
	Use:   "get-many <resource> <id>...",
	Short: "Fetch several records by id (GET_MANY)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := includeParams(cmd)
		if err != nil {
			return err
		}
		params.IDs = args[1:]
		return runVerb(cmd, dataprovider.GetMany, args[0], params)
	},
}

var referencesCmd = &cobra.Command{
	Use:   "references <resource>",
	Short: "List records referencing a parent (GET_MANY_REFERENCE)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := collectionParams(cmd)
		if err != nil {
			return err
		}
		params.Target, _ = cmd.Flags().GetString("target")
		params.ID, _ = cmd.Flags().GetString("id")
		return runVerb(cmd, dataprovider.GetManyReference, args[0], params)
	},
}

var createCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create a record (CREATE)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readData(cmd)
		if err != nil {
			return err
		}
		return runVerb(cmd, dataprovider.Create, args[0], dataprovider.Params{Data: data})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <resource> <id>",
	Short: "Update a record (UPDATE)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readData(cmd)
		if err != nil {
			return err
		}
		return runVerb(cmd, dataprovider.Update, args[0], dataprovider.Params{ID: args[1], Data: data})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record (DELETE)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerb(cmd, dataprovider.Delete, args[0], dataprovider.Params{ID: args[1]})
	},
}

var verbsCmd = &cobra.Command{
	Use:   "verbs",
	Short: "List the supported verbs",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		if out == output.FormatJSON {
			return output.JSON(dataprovider.Verbs)
		}
		for _, v := range dataprovider.Verbs {
			output.Info("%s", v)
		}
		return nil
	},
}

func collectionParams(cmd *cobra.Command) (dataprovider.Params, error) {
	params, err := includeParams(cmd)
	if err != nil {
		return params, err
	}

	params.Pagination.Page, _ = cmd.Flags().GetInt("page")
	params.Pagination.PerPage, _ = cmd.Flags().GetInt("per-page")
	params.Sort.Field, _ = cmd.Flags().GetString("sort")
	params.Sort.Order, _ = cmd.Flags().GetString("order")

	filters, _ := cmd.Flags().GetStringArray("filter")
	params.Filter, err = parseFilters(filters)
	return params, err
}

func includeParams(cmd *cobra.Command) (dataprovider.Params, error) {
	var params dataprovider.Params
	params.Include, _ = cmd.Flags().GetStringSlice("include")

	fields, _ := cmd.Flags().GetStringArray("fields")
	var err error
	params.Fields, err = parseFields(fields)
	return params, err
}

// parseFilters turns key=value pairs into a filter map. A repeated key
// collects its values into a list.
func parseFilters(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --filter %q, expected key=value", pair)
		}
		switch prev := filters[key].(type) {
		case nil:
			filters[key] = value
		case string:
			filters[key] = []string{prev, value}
		case []string:
			filters[key] = append(prev, value)
		}
	}
	return filters, nil
}

// parseFields turns type=a,b pairs into sparse fieldsets.
func parseFields(pairs []string) (map[string][]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	fields := make(map[string][]string, len(pairs))
	for _, pair := range pairs {
		typ, list, ok := strings.Cut(pair, "=")
		if !ok || typ == "" || list == "" {
			return nil, fmt.Errorf("invalid --fields %q, expected type=a,b", pair)
		}
		fields[typ] = append(fields[typ], strings.Split(list, ",")...)
	}
	return fields, nil
}

// readData decodes --data, reading stdin when it is "-". Numbers keep their
// literal form so large integer ids survive.
func readData(cmd *cobra.Command) (dataprovider.Record, error) {
	raw, _ := cmd.Flags().GetString("data")

	var src []byte
	if raw == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		src = b
	} else {
		src = []byte(raw)
	}

	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	var data dataprovider.Record
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid JSON in --data: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("--data must be a JSON object")
	}
	return data, nil
}
