package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rules/internal/config"
	"github.com/jakechorley/shift-rules/pkg/clients/gmailclient"
	"github.com/jakechorley/shift-rules/pkg/clients/sheetsclient"
	"github.com/jakechorley/shift-rules/pkg/core/model"
	"github.com/jakechorley/shift-rules/pkg/core/repository"
	"github.com/jakechorley/shift-rules/pkg/core/services"
	"github.com/jakechorley/shift-rules/pkg/core/suggest"
	"github.com/jakechorley/shift-rules/pkg/db"
	"github.com/jakechorley/shift-rules/pkg/lock"
	"github.com/jakechorley/shift-rules/pkg/notify"
	"github.com/jakechorley/shift-rules/pkg/postgres"
	"github.com/jakechorley/shift-rules/pkg/sqlite"
	"github.com/jakechorley/shift-rules/pkg/utils"
)

// eventBuffer bounds the events waiting for slow transports
const eventBuffer = 256

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg       *config.Config
	Env       string
	Logger    *zap.Logger
	Ctx       context.Context
	Database  db.Database // nil for the memory driver
	Session   *db.Session
	Scheduler *services.Scheduler
	Directory *services.RosterDirectory
	Publisher *notify.Async

	sheetsOnce   sync.Once
	sheetsClient *sheetsclient.Client
	sheetsErr    error
	auth         *utils.Authenticator
	closers      []func() error
}

// Init connects the configured database, lock, publishers and roster and
// builds the scheduler over the hydrated repository. Commands are created
// before Init runs, so it fills in the context they already hold.
func (app *AppContext) Init(ctx context.Context, envName string, cfg *config.Config, logger *zap.Logger) error {
	app.Cfg, app.Env, app.Logger, app.Ctx = cfg, envName, logger, ctx

	if err := app.openDatabase(); err != nil {
		app.Close()
		return err
	}

	publisher, err := app.buildPublisher()
	if err != nil {
		app.Close()
		return err
	}
	app.Publisher = notify.NewAsync(publisher, eventBuffer, logger)
	app.closers = append(app.closers, app.Publisher.Close)

	employees, err := app.loadRoster()
	if err != nil {
		app.Close()
		return err
	}
	app.Directory = services.NewRosterDirectory(employees)
	logger.Debug("Roster loaded", zap.String("source", cfg.Roster.Source), zap.Int("employees", len(employees)))

	calendar, err := cfg.Calendar()
	if err != nil {
		app.Close()
		return fmt.Errorf("failed to build special events calendar: %w", err)
	}

	repo := repository.NewMemoryStore()
	app.Scheduler, err = services.NewScheduler(repo, &cfg.Catalog, logger,
		services.WithLocker(app.buildLocker()),
		services.WithPublisher(app.Publisher),
		services.WithDirectory(app.Directory),
		services.WithSpecialEvents(calendar),
		services.WithPreferences(suggest.RosterPreferences{}),
		services.WithFairnessScope(cfg.FairnessScope),
		services.WithLockTimeout(cfg.LockTimeout),
	)
	if err != nil {
		app.Close()
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if app.Database != nil {
		app.Session, err = db.Hydrate(ctx, app.Database, app.Scheduler, logger)
		if err != nil {
			app.Close()
			return err
		}
	}

	return nil
}

func (app *AppContext) openDatabase() error {
	switch app.Cfg.Database.Driver {
	case config.DriverPostgres:
		database, err := postgres.NewDB(app.Ctx, app.Cfg.Database.DSN, app.Logger)
		if err != nil {
			return err
		}
		app.Database = database
	case config.DriverSQLite:
		database, err := sqlite.NewDB(app.Ctx, app.Cfg.Database.DSN, app.Logger)
		if err != nil {
			return err
		}
		app.Database = database
	default:
		app.Logger.Warn("Using the memory driver, schedules will not be saved")
		return nil
	}

	app.closers = append(app.closers, func() error {
		app.Database.Close()
		return nil
	})

	if err := app.Database.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// buildLocker uses Redis when configured so several CLI processes serialize on the same employee
func (app *AppContext) buildLocker() lock.Locker {
	if app.Cfg.Redis.Addr == "" {
		return lock.NewKeyedMutex()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.Cfg.Redis.Addr,
		Password: app.Cfg.Redis.Password,
		DB:       app.Cfg.Redis.DB,
	})
	app.closers = append(app.closers, client.Close)
	app.Logger.Debug("Using redis employee lock", zap.String("addr", app.Cfg.Redis.Addr))
	return lock.NewRedisLocker(client, app.Logger)
}

// buildPublisher always logs events and adds the queue and mail transports that are configured
func (app *AppContext) buildPublisher() (notify.Publisher, error) {
	publishers := notify.Multi{notify.NewLogPublisher(app.Logger)}

	if app.Cfg.AMQP.URL != "" {
		amqpPublisher, err := notify.DialAMQP(app.Cfg.AMQP.URL, app.Cfg.AMQP.Queue)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, amqpPublisher.Close)
		publishers = append(publishers, amqpPublisher)
	}

	var mailer notify.Mailer
	switch app.Cfg.Mail.Transport {
	case config.MailSMTP:
		smtpMailer, err := notify.NewSMTPMailer(*app.Cfg.Mail.SMTP)
		if err != nil {
			return nil, err
		}
		mailer = smtpMailer
	case config.MailGmail:
		auth, err := app.authenticator()
		if err != nil {
			return nil, err
		}
		httpClient, err := auth.HTTPClient(app.Ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to authorize gmail: %w", err)
		}
		gmailClient, err := gmailclient.NewClient(app.Ctx, httpClient, app.Cfg.Mail.GmailSender)
		if err != nil {
			return nil, err
		}
		mailer = gmailClient
	}
	if mailer != nil {
		publishers = append(publishers, notify.NewMailPublisher(mailer, app.Cfg.Mail.Recipients))
	}

	return publishers, nil
}

// loadRoster reads the employees the directory serves
func (app *AppContext) loadRoster() ([]model.Employee, error) {
	switch app.Cfg.Roster.Source {
	case config.RosterSheets:
		client, err := app.SheetsClient()
		if err != nil {
			return nil, err
		}
		employees, err := client.ListEmployees(app.Ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster from sheets: %w", err)
		}
		return employees, nil
	case config.RosterDatabase:
		employees, err := app.Database.GetEmployees(app.Ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster from database: %w", err)
		}
		return employees, nil
	default:
		return app.Cfg.InlineEmployees(), nil
	}
}

// SheetsClient authorizes against Google on first use
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	app.sheetsOnce.Do(func() {
		if app.Cfg.Roster.SheetID == "" || app.Cfg.Roster.EmployeesTab == "" {
			app.sheetsErr = errors.New("roster.sheetID and roster.employeesTab must be configured")
			return
		}
		auth, err := app.authenticator()
		if err != nil {
			app.sheetsErr = err
			return
		}
		httpClient, err := auth.HTTPClient(app.Ctx)
		if err != nil {
			app.sheetsErr = fmt.Errorf("failed to authorize sheets: %w", err)
			return
		}
		app.sheetsClient, app.sheetsErr = sheetsclient.NewClient(app.Ctx, httpClient, app.Cfg.Roster.SheetID, app.Cfg.Roster.EmployeesTab)
	})
	return app.sheetsClient, app.sheetsErr
}

func (app *AppContext) authenticator() (*utils.Authenticator, error) {
	if app.auth != nil {
		return app.auth, nil
	}

	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, err
	}
	store, err := utils.DefaultTokenStore()
	if err != nil {
		return nil, err
	}

	app.auth = utils.NewAuthenticator(oauthConfig, store, app.Env, app.Logger)
	return app.auth, nil
}

// Flush persists the schedules created during this run
func (app *AppContext) Flush() error {
	if app.Session == nil || app.Scheduler == nil {
		return nil
	}

	count, err := app.Session.Flush(app.Ctx, app.Scheduler.Repository())
	if err != nil {
		return err
	}
	if count > 0 {
		app.Logger.Info("Saved schedules", zap.Int("count", count))
	}
	return nil
}

// Close releases connections in reverse order of creation, draining pending events first
func (app *AppContext) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
