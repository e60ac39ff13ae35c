package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/catalog"
	"github.com/shelfmark/shelfmark/internal/identity"
	"github.com/shelfmark/shelfmark/internal/index"
	"github.com/shelfmark/shelfmark/internal/logger"
	"github.com/shelfmark/shelfmark/internal/service"
	redisstore "github.com/shelfmark/shelfmark/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts   []string // Host headers allowed on ops endpoints
	AllowedCIDRS   []string // IPs allowed on ops endpoints
	AllowedOrigins []string // CORS origins for the browser frontend
	TrustProxy     bool     // true if running behind a trusted reverse proxy

	RedisClient *redis.Client
	Store       *redisstore.Store
	Bookmarks   *service.Bookmarks
	Recommender *service.Recommender // nil when no model API key is configured
	Catalog     *catalog.Client
	Identity    identity.Resolver
	Featured    *index.FeaturedIndex // nil when no featured file is configured

	FeaturedReloadTrigger chan struct{} // nil when featured shelves are disabled

	SearchCacheTTL  time.Duration
	SearchMaxResult int
	RecommendBurst  int
	RecommendPerMin int
}
