package dataops

import (
	"log/slog"
	"sync"
	"time"

	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/store/local"
	"github.com/carteira-sync/internal/store/remote"
	"github.com/carteira-sync/internal/workspace"
)

type Service struct {
	workspace *workspace.Workspace
	resolver  identity.Resolver
	local     local.Store
	remote    remote.Store
	archive   SnapshotArchive
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	tokens map[string]purgeToken
}

type Config struct {
	Workspace *workspace.Workspace
	Resolver  identity.Resolver
	Local     local.Store
	Remote    remote.Store
	Archive   SnapshotArchive // optional
	TokenTTL  time.Duration
	Logger    *slog.Logger
}

func NewService(cfg Config) *Service {
	return &Service{
		workspace: cfg.Workspace,
		resolver:  cfg.Resolver,
		local:     cfg.Local,
		remote:    cfg.Remote,
		archive:   cfg.Archive,
		ttl:       cfg.TokenTTL,
		logger:    cfg.Logger.With("component", "dataops"),
		now:       func() time.Time { return time.Now().UTC() },
		tokens:    make(map[string]purgeToken),
	}
}
