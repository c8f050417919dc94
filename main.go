// Package main generates the public notice of filing for a Labor Condition
// Application (LCA) from a JSON or YAML record.
//
// The notice is written as a PDF to a local directory or an S3 bucket,
// printed as a data URL for previews, checked with a dry run, emailed to the
// people responsible for posting it, or served over HTTP.
//
// Usage: lcanotice [--config lca.yaml] <generate|preview|validate|mail|serve> [record]
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"lcanotice/internal/lca"
	"lcanotice/internal/server"
	"lcanotice/internal/storage"
)

const version = "1.0.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("lcanotice failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "lcanotice",
		Usage:   "Generate Labor Condition Application notices of filing",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file (default " + defaultConfigFile + ")",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			generateCommand,
			previewCommand,
			validateCommand,
			mailCommand,
			serveCommand,
		},
	}
}

// setup loads the configuration and the logger shared by every command.
func setup(cCtx *cli.Context) (*Config, *logrus.Logger, error) {
	cfg, err := loadConfig(defaultConfigFile, cCtx.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if cCtx.Bool("verbose") {
		cfg.Log.Level = "debug"
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// loadRecordArg reads the record named by the first argument.
func loadRecordArg(cCtx *cli.Context) (lca.Record, error) {
	if cCtx.NArg() != 1 {
		return lca.Record{}, errors.New("expected exactly one record file argument")
	}
	return lca.LoadRecord(cCtx.Args().First())
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

var generateCommand = &cli.Command{
	Name:      "generate",
	Usage:     "Write the notice PDF to a directory or S3",
	ArgsUsage: "<record.json|record.yaml>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output directory (overrides config)"},
		&cli.BoolFlag{Name: "s3", Usage: "Upload to the configured S3 bucket instead of writing locally"},
	},
	Action: generate,
}

func generate(cCtx *cli.Context) error {
	cfg, logger, err := setup(cCtx)
	if err != nil {
		return err
	}
	rec, err := loadRecordArg(cCtx)
	if err != nil {
		return err
	}
	opts := cfg.lcaOptions(logger)

	if !cCtx.Bool("s3") {
		dir := cfg.Output.Dir
		if out := cCtx.String("out"); out != "" {
			dir = out
		}
		path, err := lca.Save(rec, dir, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cCtx.App.Writer, path)
		return nil
	}

	if cfg.S3.Bucket == "" {
		return errors.New("s3 bucket is not configured")
	}
	data, filename, err := lca.Render(rec, opts...)
	if err != nil {
		return err
	}
	sink, err := storage.NewS3SinkFromEnv(cCtx.Context, cfg.S3.Bucket, cfg.S3.Prefix)
	if err != nil {
		return err
	}
	location, err := sink.Put(cCtx.Context, filename, data)
	if err != nil {
		return err
	}
	logger.WithField("location", location).Info("LCA document uploaded")
	fmt.Fprintln(cCtx.App.Writer, location)
	return nil
}

var previewCommand = &cli.Command{
	Name:      "preview",
	Usage:     "Print the notice as a data URL",
	ArgsUsage: "<record.json|record.yaml>",
	Action: func(cCtx *cli.Context) error {
		cfg, logger, err := setup(cCtx)
		if err != nil {
			return err
		}
		rec, err := loadRecordArg(cCtx)
		if err != nil {
			return err
		}
		url, err := lca.Preview(rec, cfg.lcaOptions(logger)...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cCtx.App.Writer, url)
		return nil
	},
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check a record and dry-run the document generation",
	ArgsUsage: "<record.json|record.yaml>",
	Action:    validate,
}

func validate(cCtx *cli.Context) error {
	cfg, logger, err := setup(cCtx)
	if err != nil {
		return err
	}
	rec, err := loadRecordArg(cCtx)
	if err != nil {
		return err
	}

	if missing := lca.MissingFields(rec); len(missing) > 0 {
		total := len(lca.RequiredFields())
		logger.WithFields(logrus.Fields{
			"missing":  strings.Join(missing, ","),
			"complete": fmt.Sprintf("%d%%", (total-len(missing))*100/total),
		}).Warn("record is incomplete")
	}
	if err := lca.Validate(rec); err != nil {
		return err
	}
	if !lca.DryRun(rec, cfg.lcaOptions(logger)...) {
		return errors.New("document generation failed")
	}
	fmt.Fprintf(cCtx.App.Writer, "%s: ok\n", lca.Filename(rec))
	return nil
}

var mailCommand = &cli.Command{
	Name:      "mail",
	Usage:     "Email the notice PDF to the configured recipient",
	ArgsUsage: "<record.json|record.yaml>",
	Action: func(cCtx *cli.Context) error {
		cfg, logger, err := setup(cCtx)
		if err != nil {
			return err
		}
		rec, err := loadRecordArg(cCtx)
		if err != nil {
			return err
		}
		data, filename, err := lca.Render(rec, cfg.lcaOptions(logger)...)
		if err != nil {
			return err
		}

		subject := fmt.Sprintf("LCA notice of filing %s", rec.CaseNumber)
		if err := sendEmail(cfg, subject, Attachment{Filename: filename, Data: data}); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		logger.WithFields(logrus.Fields{"case": rec.CaseNumber, "to": cfg.Email.To}).Info("LCA document mailed")
		return nil
	},
}

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup(cCtx)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ReadTimeoutSec:  cfg.Server.ReadTimeoutSec,
		WriteTimeoutSec: cfg.Server.WriteTimeoutSec,
	}, logger, cfg.lcaOptions(logger)...)

	go func() {
		logger.WithField("port", cfg.Server.Port).Infof("server starting http://localhost:%d", cfg.Server.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
