package cmd

import (
	"fmt"
	goruntime "runtime"

	"github.com/spf13/cobra"

	"github.com/systiva/accessctl/pkg/domain/tenant"
)

var (
	version string

	// Global flags
	flagAccountID      string
	flagAccountName    string
	flagEnterpriseID   string
	flagEnterpriseName string
	flagOutput         string
	flagVerbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "systiva-admin",
	Short: "Systiva access-control administration CLI",
	Long: `systiva-admin is a kubectl-style CLI for managing users, groups and
roles across the Systiva catalog and per-account catalogs.

Without --account-id/--account-name the CLI operates on the Global
(Systiva) catalog. Pass both flags to operate on one account's catalog;
pass --enterprise-id/--enterprise-name to narrow group listings and
group resolution to one enterprise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAccountID, "account-id", "", "Account id; omit (or \"null\") for the Systiva catalog")
	rootCmd.PersistentFlags().StringVar(&flagAccountName, "account-name", "", "Account name; \"systiva\" selects the Global catalog")
	rootCmd.PersistentFlags().StringVar(&flagEnterpriseID, "enterprise-id", "", "Enterprise id for group filtering")
	rootCmd.PersistentFlags().StringVar(&flagEnterpriseName, "enterprise-name", "", "Enterprise name for group filtering")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "Output format: table, wide, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(roleCmd)
}

// tenantScope resolves the target catalog and enterprise filter from the
// persistent flags, mirroring how inbound identifiers are interpreted.
func tenantScope() (tenant.Context, *tenant.EnterpriseFilter) {
	return tenant.Resolve(flagAccountID, flagAccountName, flagEnterpriseID, flagEnterpriseName)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("systiva-admin version %s\n", version)
		fmt.Printf("  Go:       %s\n", goruntime.Version())
		fmt.Printf("  OS/Arch:  %s/%s\n", goruntime.GOOS, goruntime.GOARCH)
	},
}
