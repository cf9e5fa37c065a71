// Package cli is the artloop command line: it wires the backend and exposes
// it either directly (invoke, loop) or over HTTP (serve).
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dskvich/artloop/pkg/commands"
	"github.com/dskvich/artloop/pkg/config"
	"github.com/dskvich/artloop/pkg/credentials"
	"github.com/dskvich/artloop/pkg/database"
	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/logger"
	"github.com/dskvich/artloop/pkg/openai"
	"github.com/dskvich/artloop/pkg/persona"
	"github.com/dskvich/artloop/pkg/repository"
	"github.com/dskvich/artloop/pkg/services"
	"github.com/dskvich/artloop/pkg/storage"
	"github.com/dskvich/artloop/pkg/telemetry"
)

// ConfigLoader reads the runtime configuration.
type ConfigLoader func() (*config.Config, error)

type AppOption func(*App)

func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// WithoutLogSetup keeps the current default slog logger; tests use it.
func WithoutLogSetup() AppOption {
	return func(a *App) { a.skipLogSetup = true }
}

type App struct {
	root *cobra.Command

	loadConfig   ConfigLoader
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	skipLogSetup bool

	logLevel string
	cfg      *config.Config
	closers  []func()
	deps     *backend
}

// backend is everything the commands need, built once per process.
type backend struct {
	registry *commands.Registry
	loop     commands.LoopRunner
	painter  painter
	prompts  promptsRepository
}

type painter interface {
	services.Painter
	RegenerateImage(ctx context.Context, promptID int64, style domain.ImageStyle) (*services.GeneratedImage, error)
}

func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig: config.Parse,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.root = a.newRootCommand()
	return a
}

func (a *App) Execute(ctx context.Context) error {
	defer a.close()
	return a.root.ExecuteContext(ctx)
}

// SetArgs overrides os.Args[1:].
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "artloop",
		Short: "Generate, save and discuss AI paintings",
		Long: `artloop is the backend of the painting desktop app.

It saves paintings and sessions to disk, asks the model to describe,
critique and re-prompt images, and serves those commands over HTTP.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(
		a.newServeCommand(),
		a.newInvokeCommand(),
		a.newCommandsCommand(),
		a.newLoopCommand(),
		a.newPaintCommand(),
		a.newHistoryCommand(),
		a.newVersionCommand(),
	)
	return root
}

func (a *App) init(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if !a.skipLogSetup {
		level := cfg.LogLevel
		if a.logLevel != "" {
			level = a.logLevel
		}
		closer, err := logger.Setup(level, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("setting up logger: %w", err)
		}
		a.closers = append(a.closers, func() { closer.Close() })
	}

	shutdown, err := telemetry.Setup(ctx, cfg.TraceFile)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	a.closers = append(a.closers, shutdown)

	return nil
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// backend builds the command registry and its dependencies on first use.
func (a *App) backend() (*backend, error) {
	if a.deps != nil {
		return a.deps, nil
	}
	cfg := a.cfg

	personas, err := persona.Load(cfg.PersonasFile)
	if err != nil {
		return nil, err
	}

	promptsRepo, err := a.openPrompts()
	if err != nil {
		return nil, err
	}

	keys := credentials.NewResolver(cfg.EnvFallbackFile)
	imageStore := storage.NewImageStore(cfg.PaintingsDir)
	sessionStore := storage.NewSessionStore(cfg.SessionsDir)

	analysisService := services.NewAnalysisService(
		openai.NewClient(keys, cfg.OpenAIBaseURL, cfg.OpenAITimeout),
		personas,
	)
	imageService := services.NewImageService(
		openai.NewImageGenerator(keys, cfg.OpenAIBaseURL, cfg.OpenAITimeout),
		imageStore,
		promptsRepo,
	)
	loopService := services.NewLoopService(imageService, analysisService, sessionStore, imageStore.Dir())

	a.deps = &backend{
		registry: commands.New(commands.Deps{
			Images:   imageStore,
			Sessions: sessionStore,
			Analyzer: analysisService,
			Loop:     loopService,
		}),
		loop:    loopService,
		painter: imageService,
		prompts: promptsRepo,
	}
	return a.deps, nil
}

type promptsRepository interface {
	services.PromptsRepository
	Recent(ctx context.Context, limit int) ([]domain.Prompt, error)
}

func (a *App) openPrompts() (promptsRepository, error) {
	if a.cfg.DatabaseURL == "" {
		return repository.NewMemoryPromptsRepository(), nil
	}

	db, err := database.Open(a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating db: %w", err)
	}
	a.closers = append(a.closers, func() { closeDB(db) })

	return repository.NewPromptsRepository(db), nil
}

func closeDB(db *sql.DB) {
	_ = db.Close()
}
