// Copyright (c) 2026 The Kroma developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/selcuktann/kroma/api"
	"github.com/selcuktann/kroma/bridge"
	"github.com/selcuktann/kroma/checkpoint"
	"github.com/selcuktann/kroma/kroma"
	"github.com/selcuktann/kroma/log"
	"github.com/selcuktann/kroma/metrics"
	"github.com/selcuktann/kroma/pool"
	"github.com/selcuktann/kroma/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "kroma-pool",
		Usage:     "Validator pool node of the Kroma rollup",
		Copyright: "2026 The Kroma developers",
		Flags: []cli.Flag{
			configFlag,
			apiAddrFlag,
			apiCorsFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			verbosityFlag,
			submissionIntervalFlag,
			startingBlockFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)

	cfg := pool.DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = pool.ConfigFromFile(path); err != nil {
			return err
		}
	}
	if cfg.GenesisTime == 0 {
		cfg.GenesisTime = uint64(time.Now().Unix())
		logger.Warn("genesis time not configured, using now", "genesisTime", cfg.GenesisTime)
	}

	store := checkpoint.NewStore(
		ctx.Uint64(submissionIntervalFlag.Name),
		ctx.Uint64(startingBlockFlag.Name),
		cfg.MinBondAmount,
		cfg.FinalizationPeriod,
	)
	notifier := bridge.NewRewardNotifier(bridge.DryRunPortal{}, kroma.ValidatorRewardAddress)

	p, err := pool.New(cfg, state.New(), store, notifier)
	if err != nil {
		return err
	}
	defer p.Close()
	store.Bind(p)

	now := func() uint64 { return uint64(time.Now().Unix()) }
	apiHandler := api.New(p, store, now, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})

	exitCtx := handleExitSignal()
	group, groupCtx := errgroup.WithContext(exitCtx)

	apiListener, err := net.Listen("tcp", ctx.String(apiAddrFlag.Name))
	if err != nil {
		return errors.WithMessage(err, "listen API addr")
	}
	logger.Info("API server started", "addr", apiListener.Addr())
	group.Go(func() error {
		return serveHTTP(groupCtx, &http.Server{Handler: apiHandler}, apiListener, "api")
	})

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		metricsListener, err := net.Listen("tcp", ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return errors.WithMessage(err, "listen metrics addr")
		}
		logger.Info("metrics server started", "addr", metricsListener.Addr())
		group.Go(func() error {
			return serveHTTP(groupCtx, &http.Server{Handler: metrics.HTTPHandler()}, metricsListener, "metrics")
		})
	}

	return group.Wait()
}
