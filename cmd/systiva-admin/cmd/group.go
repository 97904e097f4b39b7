package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systiva/accessctl/internal/app"
	"github.com/systiva/accessctl/pkg/domain/group"
)

var groupCmd = &cobra.Command{
	Use:     "group",
	Aliases: []string{"groups"},
	Short:   "Manage groups in the selected catalog",
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups, optionally narrowed by enterprise flags",
	RunE:  runGroupList,
}

var groupGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one group by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupGet,
}

var groupFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Show one group by exact name",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupFind,
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupCreate,
}

var groupUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update group fields; omitted flags stay untouched",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupUpdate,
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a group",
	Long: `Delete a group.

User memberships referencing the group are not cleaned up; readers
skip dangling references.`,
	Args: cobra.ExactArgs(1),
	RunE: runGroupDelete,
}

var groupAssignRolesCmd = &cobra.Command{
	Use:   "assign-roles <group-id> <role-id>...",
	Short: "Add roles to a group",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runGroupAssignRoles,
}

var groupRemoveRolesCmd = &cobra.Command{
	Use:   "remove-roles <group-id> <role-id>...",
	Short: "Remove roles from a group",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runGroupRemoveRoles,
}

func init() {
	groupCreateCmd.Flags().String("description", "", "Description")
	groupCreateCmd.Flags().String("entity", "", "Entity tag")
	groupCreateCmd.Flags().String("product", "", "Product tag")
	groupCreateCmd.Flags().String("service", "", "Service tag")
	groupCreateCmd.Flags().String("enterprise", "", "Enterprise tag")
	groupCreateCmd.Flags().StringSlice("roles", nil, "Role ids to assign")

	groupUpdateCmd.Flags().String("name", "", "New name")
	groupUpdateCmd.Flags().String("description", "", "New description")
	groupUpdateCmd.Flags().String("entity", "", "New entity tag")
	groupUpdateCmd.Flags().String("product", "", "New product tag")
	groupUpdateCmd.Flags().String("service", "", "New service tag")
	groupUpdateCmd.Flags().String("enterprise", "", "New enterprise tag")

	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupGetCmd)
	groupCmd.AddCommand(groupFindCmd)
	groupCmd.AddCommand(groupCreateCmd)
	groupCmd.AddCommand(groupUpdateCmd)
	groupCmd.AddCommand(groupDeleteCmd)
	groupCmd.AddCommand(groupAssignRolesCmd)
	groupCmd.AddCommand(groupRemoveRolesCmd)
}

func runGroupList(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, enterprise := tenantScope()
	groups, err := rt.Groups.ListGroups(cmd.Context(), tn, enterprise)
	if err != nil {
		return err
	}

	switch flagOutput {
	case outputJSON:
		printJSON(groups)
	case outputYAML:
		printYAML(groups)
	case outputWide:
		t := newTable("ID", "NAME", "ENTERPRISE", "ENTITY", "PRODUCT", "SERVICE", "ROLES", "CREATED")
		for _, g := range groups {
			t.AddRow(g.ID, g.Name, g.Enterprise, g.Entity, g.Product, g.Service,
				joinOrDash(g.AssignedRoles), shortTime(g.CreatedAt))
		}
		t.Flush()
	default:
		t := newTable("ID", "NAME", "ENTERPRISE", "ROLES")
		for _, g := range groups {
			t.AddRow(truncate(g.ID, 12), g.Name, g.Enterprise, fmt.Sprintf("%d", len(g.AssignedRoles)))
		}
		t.Flush()
	}
	return nil
}

func runGroupGet(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	g, err := rt.Groups.GetGroup(cmd.Context(), tn, args[0])
	if err != nil {
		return err
	}

	printGroup(g)
	return nil
}

func runGroupFind(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	g, err := rt.Groups.FindByName(cmd.Context(), tn, args[0])
	if err != nil {
		return err
	}

	printGroup(g)
	return nil
}

func runGroupCreate(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	input := app.CreateGroupInput{Name: args[0]}
	input.Description, _ = cmd.Flags().GetString("description")
	input.Entity, _ = cmd.Flags().GetString("entity")
	input.Product, _ = cmd.Flags().GetString("product")
	input.Service, _ = cmd.Flags().GetString("service")
	input.Enterprise, _ = cmd.Flags().GetString("enterprise")
	input.Roles, _ = cmd.Flags().GetStringSlice("roles")

	tn, _ := tenantScope()
	g, err := rt.Groups.CreateGroup(cmd.Context(), tn, input)
	if err != nil {
		return err
	}

	printGroup(g)
	return nil
}

func runGroupUpdate(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	var patch group.Patch
	stringFlag := func(name string, dst **string) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			*dst = &v
		}
	}
	stringFlag("name", &patch.Name)
	stringFlag("description", &patch.Description)
	stringFlag("entity", &patch.Entity)
	stringFlag("product", &patch.Product)
	stringFlag("service", &patch.Service)
	stringFlag("enterprise", &patch.Enterprise)

	tn, _ := tenantScope()
	g, err := rt.Groups.UpdateGroup(cmd.Context(), tn, args[0], patch)
	if err != nil {
		return err
	}

	printGroup(g)
	return nil
}

func runGroupDelete(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	if err := rt.Groups.DeleteGroup(cmd.Context(), tn, args[0]); err != nil {
		return err
	}

	fmt.Printf("group %s deleted\n", args[0])
	return nil
}

func runGroupAssignRoles(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	g, err := rt.Groups.AssignRoles(cmd.Context(), tn, args[0], args[1:])
	if err != nil {
		return err
	}

	printGroup(g)
	return nil
}

func runGroupRemoveRoles(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	g, err := rt.Groups.RemoveRoles(cmd.Context(), tn, args[0], args[1:])
	if err != nil {
		return err
	}

	printGroup(g)
	return nil
}

func printGroup(g *group.Group) {
	switch flagOutput {
	case outputJSON:
		printJSON(g)
	case outputYAML:
		printYAML(g)
	default:
		fmt.Printf("ID:          %s\n", g.ID)
		fmt.Printf("Name:        %s\n", g.Name)
		fmt.Printf("Description: %s\n", g.Description)
		fmt.Printf("Enterprise:  %s\n", g.Enterprise)
		fmt.Printf("Entity:      %s\n", g.Entity)
		fmt.Printf("Product:     %s\n", g.Product)
		fmt.Printf("Service:     %s\n", g.Service)
		fmt.Printf("Roles:       %s\n", joinOrDash(g.AssignedRoles))
		fmt.Printf("Created:     %s\n", shortTime(g.CreatedAt))
		fmt.Printf("Updated:     %s\n", shortTime(g.UpdatedAt))
	}
}
