package main

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/docrelay/internal/adapters/driven/archive/gcs"
	"github.com/custodia-labs/docrelay/internal/adapters/driven/config"
	"github.com/custodia-labs/docrelay/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docrelay/internal/adapters/driven/docx"
	"github.com/custodia-labs/docrelay/internal/adapters/driven/google"
	oauthclient "github.com/custodia-labs/docrelay/internal/adapters/driven/oauth"
	"github.com/custodia-labs/docrelay/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docrelay/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docrelay/internal/adapters/driving/cli"
	oauthflow "github.com/custodia-labs/docrelay/internal/adapters/driving/oauth"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
	"github.com/custodia-labs/docrelay/internal/core/ports/driving"
	"github.com/custodia-labs/docrelay/internal/core/services"
	"github.com/custodia-labs/docrelay/internal/logger"
)

// app owns the long-lived resources behind the CLI services.
type app struct {
	Services cli.Services
	closers  []io.Closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Warnw("closing resource", logger.FieldError, err)
		}
	}
}

// wire builds every adapter from configuration. A missing OAuth client
// is not fatal: commands that do not need Google (config, history,
// version) keep working and the rest report the problem.
func wire(ctx context.Context, in io.Reader, out io.Writer) (*app, error) {
	dataDir, err := file.DefaultDir()
	if err != nil {
		return nil, err
	}
	store, err := file.NewConfigStore(dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "opening settings")
	}
	cfg, err := config.Load(store, dataDir)
	if err != nil {
		return nil, err
	}

	a := &app{}
	a.Services.Config = store
	a.Services.TokenPath = cfg.TokenPath

	runs := openRunStore(cfg, a)
	history := services.NewHistoryService(runs)
	a.Services.History = history

	tokens := oauthclient.NewTokenFile(cfg.TokenPath, cfg.TokenJSON)
	a.Services.CredentialStore = tokens
	a.Services.WatchToken = tokens.Watch

	if err := cfg.Validate(); err != nil {
		a.Services.ConfigErr = err
		return a, nil
	}

	client := oauthclient.NewClient(oauthclient.ClientConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       google.Scopes,
	})

	var archive driven.ArtifactArchive
	if cfg.ArchiveBucket != "" {
		gcsArchive, err := gcs.NewArchive(ctx, cfg.ArchiveBucket)
		if err != nil {
			logger.Warnw("archive disabled", logger.FieldError, err)
		} else {
			archive = gcsArchive
			a.closers = append(a.closers, gcsArchive)
		}
	}

	build := func(authorizer driven.Authorizer) (*services.Pipeline, *services.CredentialManager, error) {
		creds := services.NewCredentialManager(tokens, client, authorizer)
		auth := google.WithCredentials(creds)

		docsSvc, err := google.NewDocsService(ctx, nil, auth)
		if err != nil {
			return nil, nil, errors.Wrap(err, "creating Docs client")
		}
		driveSvc, err := google.NewDriveService(ctx, nil, auth)
		if err != nil {
			return nil, nil, errors.Wrap(err, "creating Drive client")
		}
		gmailSvc, err := google.NewGmailService(ctx, nil, auth)
		if err != nil {
			return nil, nil, errors.Wrap(err, "creating Gmail client")
		}

		opts := []services.PipelineOption{
			services.WithCredentials(creds),
			services.WithRunStore(runs),
			services.WithStageTimeout(cfg.StageTimeout),
		}
		if archive != nil {
			opts = append(opts, services.WithArchive(archive))
		}

		pipeline := services.NewPipeline(
			services.NewValidator(cfg.DefaultRecipient),
			services.NewDocumentCreator(google.NewDocumentClient(docsSvc, driveSvc), cfg.DriveFolderID),
			services.NewDocumentExporter(google.NewExportClient(driveSvc), docx.NewVerifier()),
			services.NewEmailSender(google.NewMailClient(gmailSvc)),
			opts...,
		)
		return pipeline, creds, nil
	}

	authorizer, err := newAuthorizer(cfg, in, out)
	if err != nil {
		return nil, err
	}
	pipeline, creds, err := build(authorizer)
	if err != nil {
		return nil, err
	}
	a.Services.Submissions = pipeline
	a.Services.Credentials = creds
	a.Services.Server = func() (driving.SubmissionProcessor, cli.CredentialService, error) {
		return build(oauthflow.DisabledAuthorizer{})
	}

	inspector, err := google.NewTokenInspector(ctx)
	if err != nil {
		logger.Warnw("token inspector unavailable", logger.FieldError, err)
	} else {
		a.Services.Inspector = inspector
	}

	return a, nil
}

// openRunStore prefers the SQLite history and falls back to memory.
func openRunStore(cfg *config.Config, a *app) driven.RunStore {
	if path := cfg.HistoryPath(); path != "" {
		store, err := sqlite.NewStore(path)
		if err == nil {
			a.closers = append(a.closers, store)
			return store
		}
		logger.Warnw("run history unavailable, keeping runs in memory", logger.FieldPath, path, logger.FieldError, err)
	}
	return memory.NewRunStore()
}

// newAuthorizer picks the consent flow for cfg.AuthMode.
func newAuthorizer(cfg *config.Config, in io.Reader, out io.Writer) (driven.Authorizer, error) {
	port, err := cfg.CallbackPort()
	if err != nil {
		return nil, err
	}
	console := &oauthflow.ConsoleAuthorizer{In: in, Out: out, Redirect: cfg.RedirectURL}

	switch cfg.AuthMode {
	case config.AuthModeConsole:
		return console, nil
	case config.AuthModeNone:
		return oauthflow.DisabledAuthorizer{}, nil
	default:
		local := oauthflow.NewLocalServerAuthorizer(out, console)
		local.Port = port
		local.Redirect = cfg.RedirectURL
		return local, nil
	}
}
