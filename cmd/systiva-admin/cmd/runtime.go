package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/systiva/accessctl/internal/app"
	"github.com/systiva/accessctl/internal/config"
	"github.com/systiva/accessctl/internal/infra/dynamo"
	"github.com/systiva/accessctl/internal/infra/memory"
	"github.com/systiva/accessctl/internal/infra/postgres"
	"github.com/systiva/accessctl/internal/infra/redis"
	"github.com/systiva/accessctl/pkg/domain/group"
	"github.com/systiva/accessctl/pkg/domain/role"
	"github.com/systiva/accessctl/pkg/domain/user"
	"github.com/systiva/accessctl/pkg/logger"
)

// runtime holds the wired services for one CLI invocation. The CLI drives
// the engine in-process against the configured store.
type runtime struct {
	Users  *app.UserService
	Groups *app.GroupService
	Roles  *app.RoleService

	closers []func() error
}

// buildRuntime loads config from the environment and wires repositories
// and services for the selected storage driver.
func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	}
	if flagVerbose {
		logCfg.Level = "debug"
	}
	log := logger.New(logCfg)

	rt := &runtime{}

	var (
		userRepo  user.Repository
		groupRepo group.Repository
		roleRepo  role.Repository
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		userRepo, groupRepo, roleRepo = store.Users, store.Groups, store.Roles

	case config.DriverPostgres:
		db, err := postgres.New(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, db.Close)
		userRepo = postgres.NewUserRepository(db)
		groupRepo = postgres.NewGroupRepository(db)
		roleRepo = postgres.NewRoleRepository(db)

	case config.DriverDynamoDB:
		client, err := dynamo.New(ctx, &cfg.Dynamo)
		if err != nil {
			return nil, fmt.Errorf("connect dynamodb: %w", err)
		}
		store := dynamo.NewStore(client)
		userRepo, groupRepo, roleRepo = store.Users, store.Groups, store.Roles

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Storage.CacheEnabled {
		rc, err := redis.New(&cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rt.closers = append(rt.closers, rc.Close)
		cached, err := redis.NewCachedGroupRepository(groupRepo, rc, cfg.Storage.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("init group cache: %w", err)
		}
		groupRepo = cached
	}

	auditSvc := app.NewAuditService(log)
	scopes := app.NewScopeValidator(groupRepo, log)

	rt.Users = app.NewUserService(userRepo, groupRepo, scopes, log,
		app.WithUserAuditService(auditSvc))
	rt.Groups = app.NewGroupService(groupRepo, roleRepo, log,
		app.WithGroupAuditService(auditSvc))
	rt.Roles = app.NewRoleService(roleRepo, log,
		app.WithRoleAuditService(auditSvc))

	return rt, nil
}

// Close releases store connections in reverse acquisition order.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i]()
	}
}
