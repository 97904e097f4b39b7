package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/systiva/accessctl/internal/app"
	"github.com/systiva/accessctl/internal/config"
	"github.com/systiva/accessctl/internal/infra/dynamo"
	"github.com/systiva/accessctl/internal/infra/memory"
	"github.com/systiva/accessctl/internal/infra/postgres"
	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/role"
	"github.com/systiva/accessctl/pkg/domain/tenant"
	"github.com/systiva/accessctl/pkg/domain/user"
	"github.com/systiva/accessctl/pkg/logger"
)

// Seeds demo catalogs through the domain services so the data passes the
// same validation as real writes and works against any storage driver.
func main() {
	accountID := flag.String("account-id", "acct-1001", "Demo account id")
	accountName := flag.String("account-name", "Acme Corp", "Demo account name")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fatal("load config", err)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: "text", Output: os.Stderr})

	var (
		userRepo  user.Repository
		groupRepo group.Repository
		roleRepo  role.Repository
	)
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		fmt.Println("Warning: memory driver holds data for this process only")
		store := memory.NewStore()
		userRepo, groupRepo, roleRepo = store.Users, store.Groups, store.Roles
	case config.DriverPostgres:
		db, err := postgres.New(&cfg.Database)
		if err != nil {
			fatal("connect postgres", err)
		}
		defer db.Close()
		userRepo = postgres.NewUserRepository(db)
		groupRepo = postgres.NewGroupRepository(db)
		roleRepo = postgres.NewRoleRepository(db)
	case config.DriverDynamoDB:
		client, err := dynamo.New(ctx, &cfg.Dynamo)
		if err != nil {
			fatal("connect dynamodb", err)
		}
		store := dynamo.NewStore(client)
		userRepo, groupRepo, roleRepo = store.Users, store.Groups, store.Roles
	default:
		fatal("select driver", fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver))
	}

	scopes := app.NewScopeValidator(groupRepo, log)
	users := app.NewUserService(userRepo, groupRepo, scopes, log)
	groups := app.NewGroupService(groupRepo, roleRepo, log)
	roles := app.NewRoleService(roleRepo, log)

	global := tenant.Global()
	account := tenant.Account(*accountID, *accountName)

	// Global catalog: platform-wide roles and groups.
	adminRole, err := roles.CreateRole(ctx, global, app.CreateRoleInput{
		Name:        "platform-admin",
		Description: "Full administrative access",
	})
	if err != nil {
		fatal("seed global role", err)
	}
	readerRole, err := roles.CreateRole(ctx, global, app.CreateRoleInput{
		Name:        "catalog-reader",
		Description: "Read-only catalog access",
	})
	if err != nil {
		fatal("seed global role", err)
	}

	if _, err := groups.CreateGroup(ctx, global, app.CreateGroupInput{
		Name:        "Administrators",
		Description: "Systiva platform administrators",
		Roles:       []string{adminRole.ID},
	}); err != nil {
		fatal("seed global group", err)
	}
	if _, err := groups.CreateGroup(ctx, global, app.CreateGroupInput{
		Name:        "Operators",
		Description: "Systiva platform operators",
		Roles:       []string{readerRole.ID},
	}); err != nil {
		fatal("seed global group", err)
	}

	// Account catalog: a same-named Administrators group demonstrates
	// cross-catalog fallback resolution, plus one enterprise-tagged group.
	acctAdmins, err := groups.CreateGroup(ctx, account, app.CreateGroupInput{
		Name:        "Administrators",
		Description: "Account administrators",
		Enterprise:  *accountName,
	})
	if err != nil {
		fatal("seed account group", err)
	}
	auditors, err := groups.CreateGroup(ctx, account, app.CreateGroupInput{
		Name:        "Auditors",
		Description: "Account auditors",
		Enterprise:  *accountName,
	})
	if err != nil {
		fatal("seed account group", err)
	}

	admin, err := users.CreateUser(ctx, account, app.CreateUserInput{
		FirstName: "Ada",
		LastName:  "Admin",
		Email:     "ada.admin@example.com",
	})
	if err != nil {
		fatal("seed account user", err)
	}
	if _, err := users.AssignGroup(ctx, account, admin.ID, acctAdmins.ID); err != nil {
		fatal("assign demo membership", err)
	}

	svc, err := users.CreateUser(ctx, account, app.CreateUserInput{
		FirstName:     "Backup",
		LastName:      "Runner",
		Email:         "backup.runner@example.com",
		TechnicalUser: true,
	})
	if err != nil {
		fatal("seed technical user", err)
	}
	if _, err := users.AssignGroup(ctx, account, svc.ID, auditors.ID); err != nil {
		fatal("assign demo membership", err)
	}

	fmt.Println("Seed completed:")
	fmt.Printf("  global:  2 roles, 2 groups\n")
	fmt.Printf("  %s: 2 groups, 2 users\n", account.Key())
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", what, err)
	os.Exit(1)
}
