package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-reportform/internal/config"
	"github.com/goliatone/go-reportform/internal/logging"
	"github.com/goliatone/go-reportform/pkg/gateway"
	"github.com/goliatone/go-reportform/pkg/renderers/tui"
)

var errNoGateway = errors.New("gateway.base_url is not configured")

// app carries what every command needs once the configuration is loaded.
// Tests replace the gateways and the prompt driver.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger

	reports  gateway.ReportGateway
	training gateway.TrainingGateway
	driver   tui.PromptDriver
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "reportform",
		Short: "Confidential report form and training dashboard",
		Long: `reportform renders the confidential report form described by its
section grammar, submits and looks up reports through the remote record
service, and manages training courses and sessions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level")

	root.AddCommand(
		serveCmd(a),
		parseCmd(a),
		renderCmd(a),
		schemaCmd(a),
		fillCmd(a),
		lookupCmd(a),
		trainingCmd(a),
		lintCmd(a),
		versionCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger and gateways. Values set
// ahead of time are kept.
func (a *app) setup() error {
	if a.cfg == nil {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	if a.logger == nil {
		logger, err := logging.NewWriter(a.cfg.Log, a.errOut)
		if err != nil {
			return err
		}
		a.logger = logger
	}

	if strings.TrimSpace(a.cfg.Gateway.BaseURL) == "" || (a.reports != nil && a.training != nil) {
		return nil
	}
	opts := []gateway.Option{
		gateway.WithTimeout(a.cfg.Gateway.Timeout),
		gateway.WithLogger(a.logger),
	}
	for key, value := range a.cfg.Gateway.Headers {
		opts = append(opts, gateway.WithHeader(key, value))
	}
	client, err := gateway.NewHTTPClient(a.cfg.Gateway.BaseURL, opts...)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	if a.reports == nil {
		a.reports = client
	}
	if a.training == nil {
		a.training = client
	}
	return nil
}

func (a *app) requireReports() (gateway.ReportGateway, error) {
	if a.reports == nil {
		return nil, errNoGateway
	}
	return a.reports, nil
}

func (a *app) requireTraining() (gateway.TrainingGateway, error) {
	if a.training == nil {
		return nil, errNoGateway
	}
	return a.training, nil
}
