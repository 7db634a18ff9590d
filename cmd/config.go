package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/jsonapi-provider/internal/config"
	"github.com/telhawk-systems/jsonapi-provider/pkg/output"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetProfileCmd)
	configCmd.AddCommand(configUseCmd)
	configCmd.AddCommand(configRemoveProfileCmd)

	configSetProfileCmd.Flags().String("base-url", "", "API base URL")
	configSetProfileCmd.Flags().String("token", "", "Bearer token")
	configSetProfileCmd.Flags().StringArray("header", nil, "Extra header as Name=value (repeatable)")
	configSetProfileCmd.Flags().String("total-key", "", "Meta member holding the collection total")
	configSetProfileCmd.Flags().Bool("count-disabled", false, "Report collection totals as null")
	configSetProfileCmd.Flags().String("update-method", "", "HTTP method for updates: PATCH or PUT")
	configSetProfileCmd.Flags().String("timeout", "", "Request timeout, e.g. 30s")
	configSetProfileCmd.Flags().StringArray("relationship", nil, "Relationship as resource.field=type (repeatable)")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage jap profiles",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := activeProfile(cmd)
		if err != nil {
			return err
		}

		shown := *p
		if shown.Token != "" {
			shown.Token = "********"
		}

		out, _ := cmd.Flags().GetString("output")
		if out == output.FormatJSON {
			return output.JSON(shown)
		}

		tbl := output.NewTable([]string{"Key", "Value"})
		tbl.AddRow([]string{"config", cfg.Path()})
		tbl.AddRow([]string{"base_url", shown.BaseURL})
		tbl.AddRow([]string{"token", shown.Token})
		tbl.AddRow([]string{"total_key", shown.TotalKey})
		tbl.AddRow([]string{"count_disabled", strconv.FormatBool(shown.CountDisabled)})
		tbl.AddRow([]string{"update_method", shown.UpdateMethod})
		tbl.AddRow([]string{"timeout", shown.TimeoutDuration().String()})
		for _, name := range sortedKeys(shown.Headers) {
			tbl.AddRow([]string{"header." + name, shown.Headers[name]})
		}
		registry := p.Registry()
		for _, resource := range registry.Resources() {
			for _, field := range registry.Fields(resource) {
				target, _ := registry.Target(resource, field)
				tbl.AddRow([]string{"relationship." + resource + "." + field, target})
			}
		}
		tbl.Render()
		return nil
	},
}

var configSetProfileCmd = &cobra.Command{
	Use:   "set-profile <name>",
	Short: "Create or update a profile and make it current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		p, ok := cfg.Profile(name)
		if !ok {
			p = &config.Profile{}
		}

		flags := cmd.Flags()
		if flags.Changed("base-url") {
			p.BaseURL, _ = flags.GetString("base-url")
		}
		if flags.Changed("token") {
			p.Token, _ = flags.GetString("token")
		}
		if flags.Changed("total-key") {
			p.TotalKey, _ = flags.GetString("total-key")
		}
		if flags.Changed("count-disabled") {
			p.CountDisabled, _ = flags.GetBool("count-disabled")
		}
		if flags.Changed("update-method") {
			method, _ := flags.GetString("update-method")
			method = strings.ToUpper(method)
			if method != "PATCH" && method != "PUT" {
				return fmt.Errorf("--update-method must be PATCH or PUT")
			}
			p.UpdateMethod = method
		}
		if flags.Changed("timeout") {
			p.Timeout, _ = flags.GetString("timeout")
		}

		headers, _ := flags.GetStringArray("header")
		for _, h := range headers {
			key, value, ok := strings.Cut(h, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid --header %q, expected Name=value", h)
			}
			if p.Headers == nil {
				p.Headers = make(map[string]string)
			}
			p.Headers[key] = value
		}

		relationships, _ := flags.GetStringArray("relationship")
		for _, r := range relationships {
			resource, field, target, err := parseRelationship(r)
			if err != nil {
				return err
			}
			if p.Relationships == nil {
				p.Relationships = make(map[string]map[string]string)
			}
			if p.Relationships[resource] == nil {
				p.Relationships[resource] = make(map[string]string)
			}
			p.Relationships[resource][field] = target
		}

		if err := cfg.SaveProfile(name, p); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		output.Success("Saved profile %s to %s", name, cfg.Path())
		return nil
	},
}

var configUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.UseProfile(args[0]); err != nil {
			return err
		}
		output.Success("Now using profile %s", args[0])
		return nil
	},
}

var configRemoveProfileCmd = &cobra.Command{
	Use:   "remove-profile <name>",
	Short: "Remove a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveProfile(args[0]); err != nil {
			return err
		}
		output.Success("Removed profile %s", args[0])
		return nil
	},
}

// parseRelationship splits resource.field=type.
func parseRelationship(s string) (resource, field, target string, err error) {
	path, target, ok := strings.Cut(s, "=")
	if ok {
		resource, field, ok = strings.Cut(path, ".")
	}
	if !ok || resource == "" || field == "" || target == "" {
		return "", "", "", fmt.Errorf("invalid --relationship %q, expected resource.field=type", s)
	}
	return resource, field, target, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
