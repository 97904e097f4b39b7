package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systiva/accessctl/internal/app"
	"github.com/systiva/accessctl/pkg/domain/role"
)

var roleCmd = &cobra.Command{
	Use:     "role",
	Aliases: []string{"roles"},
	Short:   "Manage roles in the selected catalog",
}

var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles",
	RunE:  runRoleList,
}

var roleGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one role by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleGet,
}

var roleCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a role",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleCreate,
}

var roleUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update role fields; omitted flags stay untouched",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleUpdate,
}

var roleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a role",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoleDelete,
}

func init() {
	roleCreateCmd.Flags().String("description", "", "Description")
	roleCreateCmd.Flags().String("scope-config", "", "Scope configuration as a JSON object")

	roleUpdateCmd.Flags().String("name", "", "New name")
	roleUpdateCmd.Flags().String("description", "", "New description")
	roleUpdateCmd.Flags().String("scope-config", "", "New scope configuration as a JSON object")

	roleCmd.AddCommand(roleListCmd)
	roleCmd.AddCommand(roleGetCmd)
	roleCmd.AddCommand(roleCreateCmd)
	roleCmd.AddCommand(roleUpdateCmd)
	roleCmd.AddCommand(roleDeleteCmd)
}

func parseScopeConfig(raw string) (map[string]any, error) {
	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("parse scope config: %w", err)
	}
	return cfg, nil
}

func runRoleList(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	roles, err := rt.Roles.ListRoles(cmd.Context(), tn)
	if err != nil {
		return err
	}

	switch flagOutput {
	case outputJSON:
		printJSON(roles)
	case outputYAML:
		printYAML(roles)
	default:
		t := newTable("ID", "NAME", "DESCRIPTION", "CREATED")
		for _, r := range roles {
			t.AddRow(truncate(r.ID, 12), r.Name, truncate(r.Description, 40), shortTime(r.CreatedAt))
		}
		t.Flush()
	}
	return nil
}

func runRoleGet(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	r, err := rt.Roles.GetRole(cmd.Context(), tn, args[0])
	if err != nil {
		return err
	}

	printRole(r)
	return nil
}

func runRoleCreate(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	input := app.CreateRoleInput{Name: args[0]}
	input.Description, _ = cmd.Flags().GetString("description")
	if raw, _ := cmd.Flags().GetString("scope-config"); raw != "" {
		cfg, err := parseScopeConfig(raw)
		if err != nil {
			return err
		}
		input.ScopeConfig = cfg
	}

	tn, _ := tenantScope()
	r, err := rt.Roles.CreateRole(cmd.Context(), tn, input)
	if err != nil {
		return err
	}

	printRole(r)
	return nil
}

func runRoleUpdate(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	var patch role.Patch
	if cmd.Flags().Changed("name") {
		v, _ := cmd.Flags().GetString("name")
		patch.Name = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		patch.Description = &v
	}
	if cmd.Flags().Changed("scope-config") {
		raw, _ := cmd.Flags().GetString("scope-config")
		cfg, err := parseScopeConfig(raw)
		if err != nil {
			return err
		}
		patch.ScopeConfig = &cfg
	}

	tn, _ := tenantScope()
	r, err := rt.Roles.UpdateRole(cmd.Context(), tn, args[0], patch)
	if err != nil {
		return err
	}

	printRole(r)
	return nil
}

func runRoleDelete(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	if err := rt.Roles.DeleteRole(cmd.Context(), tn, args[0]); err != nil {
		return err
	}

	fmt.Printf("role %s deleted\n", args[0])
	return nil
}

func printRole(r *role.Role) {
	switch flagOutput {
	case outputJSON:
		printJSON(r)
	case outputYAML:
		printYAML(r)
	default:
		fmt.Printf("ID:          %s\n", r.ID)
		fmt.Printf("Name:        %s\n", r.Name)
		fmt.Printf("Description: %s\n", r.Description)
		if len(r.ScopeConfig) > 0 {
			data, _ := json.Marshal(r.ScopeConfig)
			fmt.Printf("Scope:       %s\n", string(data))
		}
		fmt.Printf("Created:     %s\n", shortTime(r.CreatedAt))
		fmt.Printf("Updated:     %s\n", shortTime(r.UpdatedAt))
	}
}
