package container

import (
	"context"
	"fmt"

	"nuanswers/adapters/extract"
	"nuanswers/adapters/llm"
	"nuanswers/adapters/redisstore"
	"nuanswers/adapters/sqlstore"
	"nuanswers/ai"
	"nuanswers/app"
	"nuanswers/domain/core"
	"nuanswers/domain/tutoring"
	"nuanswers/internal"
	"nuanswers/internal/config"
	"nuanswers/internal/errors"
	"nuanswers/internal/migration"
	"nuanswers/internal/session"
	"nuanswers/ports"
	"nuanswers/ui"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger
	Clock  core.Clock

	// Infrastructure
	DB           *sqlx.DB
	Records      ports.RecordStore
	SessionStore ports.SessionStore
	redis        *redisstore.Store

	// Domain services
	Gate      *tutoring.Gate
	Prompts   *ai.PromptManager
	Sessions  *session.Repository
	Lifecycle *session.Manager
	Documents *app.DocumentService

	// AI components, nil without an API key
	LLM   *llm.OpenAIClient
	Tutor *ai.Tutor
}

// New creates a container with the parts that need no external service.
// A malformed tutoring schedule is a startup error.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	gate, err := tutoring.NewGateFromConfig(cfg.Tutoring.Schedule, cfg.Tutoring.TimeZone)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Clock:   core.SystemClock{},
		Gate:    gate,
		Prompts: ai.NewPromptManager(cfg.AI.PromptsDir),
	}, nil
}

// InitWithDatabase opens the record store and runs the schema migration
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if err := c.Config.RequireDatabase(); err != nil {
		return err
	}

	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return err
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	c.Records = sqlstore.New(db)
	c.Logger.Info("[container] record store ready (%s)", c.Config.Database.Driver)
	return nil
}

// Init wires everything the web server needs. Without a reachable database
// the app still serves the tutor; record-store features report the error.
func (c *Container) Init(ctx context.Context) error {
	if err := c.InitWithDatabase(ctx); err != nil {
		c.Logger.Error("[container] record store unavailable: %v", err)
		c.Records = sqlstore.Unavailable{Err: err}
	}

	if err := c.initSessions(ctx); err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	if err := c.initAI(); err != nil {
		return fmt.Errorf("failed to initialize AI components: %w", err)
	}

	var analyzer ports.ImageAnalyzer
	if c.LLM != nil {
		analyzer = c.LLM
	}
	docs, err := app.NewDocumentService(extract.New("", c.Logger), analyzer, c.Prompts, c.Clock, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize document service: %w", err)
	}
	c.Documents = docs
	c.Lifecycle = session.NewManager(c.Records, c.Clock, c.Logger)
	return nil
}

func (c *Container) initSessions(ctx context.Context) error {
	url := c.Config.Session.RedisURL
	if url == "" {
		c.SessionStore = session.NewMemoryStore()
		c.Logger.Info("[container] sessions kept in memory")
	} else {
		store, err := redisstore.Connect(ctx, url)
		if err != nil {
			return err
		}
		c.redis = store
		c.SessionStore = store
		c.Logger.Info("[container] sessions kept in redis")
	}
	c.Sessions = session.NewRepository(c.SessionStore, c.Config.Session.TTL)
	return nil
}

func (c *Container) initAI() error {
	if err := c.Config.RequireAI(); err != nil {
		c.Logger.Warn("[container] %v", err)
		return nil
	}

	client, err := llm.NewClient(llm.ConfigFrom(c.Config.AI))
	if err != nil {
		return err
	}
	tutor, err := ai.NewTutor(client, c.Prompts, c.Logger)
	if err != nil {
		return err
	}
	c.LLM = client
	c.Tutor = tutor
	c.Logger.Info("[container] tutor using %s", c.Config.AI.ChatModel)
	return nil
}

// ServerDeps collects what the web server drives. Init must have run.
func (c *Container) ServerDeps() ui.Deps {
	return ui.Deps{
		Config:    c.Config,
		Sessions:  c.Sessions,
		Lifecycle: c.Lifecycle,
		Gate:      c.Gate,
		Documents: c.Documents,
		Store:     c.Records,
		Logger:    c.Logger,
		Tutor:     c.Tutor,
	}
}

// Shutdown closes the session store and the database
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
