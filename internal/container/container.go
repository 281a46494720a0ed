package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-postboard/config"
	"github.com/oksasatya/go-ddd-postboard/internal/application"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/event"
	repo "github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
	"github.com/oksasatya/go-ddd-postboard/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

// Store groups the repositories of one storage backend.
type Store struct {
	Users    repo.UserRepository
	Posts    repo.PostRepository
	Comments repo.CommentRepository
	Tx       repo.Transactor
}

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client
	rabbitPub   *helpers.RabbitPublisher

	jwtManager *helpers.JWTManager

	store     Store
	notifier  event.Notifier
	viewCache application.ViewCache
	postIndex application.PostIndex
	snapshots application.SnapshotStore
	sessions  application.SessionStore
)

func SetConfig(c *config.Config)    { cfg = c }
func GetConfig() *config.Config     { return cfg }
func SetLogger(l *logrus.Logger)    { logger = l }
func GetLogger() *logrus.Logger     { return logger }
func SetPGPool(p *pgxpool.Pool)     { pgPool = p }
func GetPGPool() *pgxpool.Pool      { return pgPool }
func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetGCS(s *storage.Client)      { gcsClient = s }
func GetGCS() *storage.Client       { return gcsClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }
func SetJWT(m *helpers.JWTManager)  { jwtManager = m }
func GetJWT() *helpers.JWTManager   { return jwtManager }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func SetStore(s Store) { store = s }
func GetStore() Store  { return store }

// The setters below take interfaces; pass nil, not a typed nil pointer, to leave a component off.

func SetNotifier(n event.Notifier)                 { notifier = n }
func GetNotifier() event.Notifier                  { return notifier }
func SetViewCache(c application.ViewCache)         { viewCache = c }
func GetViewCache() application.ViewCache          { return viewCache }
func SetPostIndex(i application.PostIndex)         { postIndex = i }
func GetPostIndex() application.PostIndex          { return postIndex }
func SetSnapshotStore(s application.SnapshotStore) { snapshots = s }
func GetSnapshotStore() application.SnapshotStore  { return snapshots }
func SetSessions(s application.SessionStore)       { sessions = s }
func GetSessions() application.SessionStore        { return sessions }
