package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systiva/accessctl/internal/app"
	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/user"
)

var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"users"},
	Short:   "Manage users in the selected catalog",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE:  runUserList,
}

var userGetCmd = &cobra.Command{
	Use:   "get <id|email>",
	Short: "Show one user by id or email",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserGet,
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE:  runUserCreate,
}

var userUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update user fields; omitted flags stay untouched",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserUpdate,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserDelete,
}

var userAssignGroupCmd = &cobra.Command{
	Use:   "assign-group <user-id> <group-id>",
	Short: "Add one group to a user's membership",
	Long: `Add one group to a user's membership.

The group must belong to the user's own catalog. Assigning a Systiva
group to an account user fails; use assign-groups for fallback
resolution by name.`,
	Args: cobra.ExactArgs(2),
	RunE: runUserAssignGroup,
}

var userAssignGroupsCmd = &cobra.Command{
	Use:   "assign-groups <user-id> <group-id>...",
	Short: "Replace a user's membership with the given groups",
	Long: `Replace a user's membership with the given groups.

Each group id is validated against the user's catalog. A Systiva group
id requested for an account user resolves to the same-named account
group when one exists, and is dropped with a warning otherwise. The
replace is refused when nothing survives validation.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUserAssignGroups,
}

var userRemoveGroupsCmd = &cobra.Command{
	Use:   "remove-groups <user-id> <group-id>...",
	Short: "Remove groups from a user's membership",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runUserRemoveGroups,
}

var userBulkAssignCmd = &cobra.Command{
	Use:   "bulk-assign <user-id>",
	Short: "Create-or-update groups from a spec file and assign them",
	Long: `Create-or-update groups from a JSON spec file and replace the user's
membership with the result.

The file holds an array of group specifications. Existing groups are
matched by name (never by id), updated sparsely, and missing ones are
created. Failing specifications degrade to warnings; the batch fails
only when nothing survives.

Example spec file:

  [
    {"name": "Administrators", "description": "Full access"},
    {"name": "Auditors", "enterprise": "Acme Corp"}
  ]`,
	Args: cobra.ExactArgs(1),
	RunE: runUserBulkAssign,
}

func init() {
	userCreateCmd.Flags().String("first-name", "", "First name")
	userCreateCmd.Flags().String("last-name", "", "Last name")
	userCreateCmd.Flags().String("email", "", "Email address (required)")
	userCreateCmd.Flags().Bool("technical", false, "Mark as technical user")
	_ = userCreateCmd.MarkFlagRequired("email")

	userUpdateCmd.Flags().String("first-name", "", "New first name")
	userUpdateCmd.Flags().String("last-name", "", "New last name")
	userUpdateCmd.Flags().String("email", "", "New email address")
	userUpdateCmd.Flags().String("status", "", "New status (active, inactive)")

	userBulkAssignCmd.Flags().StringP("file", "f", "", "Path to JSON group spec file (required)")
	_ = userBulkAssignCmd.MarkFlagRequired("file")

	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userGetCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userUpdateCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userAssignGroupCmd)
	userCmd.AddCommand(userAssignGroupsCmd)
	userCmd.AddCommand(userRemoveGroupsCmd)
	userCmd.AddCommand(userBulkAssignCmd)
}

func runUserList(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	users, err := rt.Users.ListUsers(cmd.Context(), tn)
	if err != nil {
		return err
	}

	switch flagOutput {
	case outputJSON:
		printJSON(users)
	case outputYAML:
		printYAML(users)
	case outputWide:
		t := newTable("ID", "EMAIL", "NAME", "STATUS", "TECHNICAL", "GROUPS", "CREATED")
		for _, u := range users {
			t.AddRow(u.ID, u.Email, u.FullName(), u.Status.String(),
				boolToStr(u.TechnicalUser), joinOrDash(u.AssignedGroups), shortTime(u.CreatedAt))
		}
		t.Flush()
	default:
		t := newTable("ID", "EMAIL", "STATUS", "GROUPS")
		for _, u := range users {
			t.AddRow(truncate(u.ID, 12), u.Email, u.Status.String(), fmt.Sprintf("%d", len(u.AssignedGroups)))
		}
		t.Flush()
	}
	return nil
}

func runUserGet(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	var u *user.User
	if strings.Contains(args[0], "@") {
		u, err = rt.Users.GetUserByEmail(cmd.Context(), tn, args[0])
	} else {
		u, err = rt.Users.GetUser(cmd.Context(), tn, args[0])
	}
	if err != nil {
		return err
	}

	printUser(u)
	return nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	input := app.CreateUserInput{}
	input.FirstName, _ = cmd.Flags().GetString("first-name")
	input.LastName, _ = cmd.Flags().GetString("last-name")
	input.Email, _ = cmd.Flags().GetString("email")
	input.TechnicalUser, _ = cmd.Flags().GetBool("technical")

	tn, _ := tenantScope()
	u, err := rt.Users.CreateUser(cmd.Context(), tn, input)
	if err != nil {
		return err
	}

	printUser(u)
	return nil
}

func runUserUpdate(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	var patch user.Patch
	if cmd.Flags().Changed("first-name") {
		v, _ := cmd.Flags().GetString("first-name")
		patch.FirstName = &v
	}
	if cmd.Flags().Changed("last-name") {
		v, _ := cmd.Flags().GetString("last-name")
		patch.LastName = &v
	}
	if cmd.Flags().Changed("email") {
		v, _ := cmd.Flags().GetString("email")
		patch.Email = &v
	}
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		status := user.Status(v)
		patch.Status = &status
	}

	tn, _ := tenantScope()
	u, err := rt.Users.UpdateUser(cmd.Context(), tn, args[0], patch)
	if err != nil {
		return err
	}

	printUser(u)
	return nil
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	if err := rt.Users.DeleteUser(cmd.Context(), tn, args[0]); err != nil {
		return err
	}

	fmt.Printf("user %s deleted\n", args[0])
	return nil
}

func runUserAssignGroup(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	u, err := rt.Users.AssignGroup(cmd.Context(), tn, args[0], args[1])
	if err != nil {
		return err
	}

	printUser(u)
	return nil
}

func runUserAssignGroups(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, enterprise := tenantScope()
	result, err := rt.Users.AssignGroups(cmd.Context(), tn, args[0], args[1:], enterprise)
	if err != nil {
		return err
	}

	printWarnings(result.Warnings)
	printUser(result.User)
	return nil
}

func runUserRemoveGroups(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tn, _ := tenantScope()
	u, err := rt.Users.RemoveGroups(cmd.Context(), tn, args[0], args[1:])
	if err != nil {
		return err
	}

	printUser(u)
	return nil
}

func runUserBulkAssign(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	path, _ := cmd.Flags().GetString("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read spec file: %w", err)
	}
	var specs []group.Spec
	if err := json.Unmarshal(data, &specs); err != nil {
		return fmt.Errorf("parse spec file: %w", err)
	}

	tn, enterprise := tenantScope()
	result, err := rt.Users.CreateAndAssignGroups(cmd.Context(), tn, app.BulkAssignInput{
		UserID: args[0],
		Groups: specs,
	}, enterprise)
	if err != nil {
		return err
	}

	printWarnings(result.Warnings)

	switch flagOutput {
	case outputJSON:
		printJSON(result)
	case outputYAML:
		printYAML(result)
	default:
		fmt.Printf("requested %d, validated %d\n", result.Requested, result.Validated)
		printUser(result.User)
	}
	return nil
}

func printUser(u *user.User) {
	switch flagOutput {
	case outputJSON:
		printJSON(u)
	case outputYAML:
		printYAML(u)
	default:
		fmt.Printf("ID:        %s\n", u.ID)
		fmt.Printf("Email:     %s\n", u.Email)
		fmt.Printf("Name:      %s\n", u.FullName())
		fmt.Printf("Status:    %s\n", u.Status)
		fmt.Printf("Technical: %s\n", boolToStr(u.TechnicalUser))
		fmt.Printf("Groups:    %s\n", joinOrDash(u.AssignedGroups))
		fmt.Printf("Created:   %s\n", shortTime(u.CreatedAt))
		fmt.Printf("Updated:   %s\n", shortTime(u.UpdatedAt))
	}
}
