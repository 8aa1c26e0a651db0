// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/sea-bonus/cmd/seabonus/engine"
	"github.com/vechain/sea-bonus/cmd/seabonus/httpserver"
	"github.com/vechain/sea-bonus/health"
	"github.com/vechain/sea-bonus/lifecycle"
	"github.com/vechain/sea-bonus/log"
	"github.com/vechain/sea-bonus/metrics"
	"github.com/vechain/sea-bonus/scheduler"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
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
		Name:      "SeaBonus",
		Usage:     "Bonus engine of the Sea referral network",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			bonusConfigFlag,
			bonusIntervalFlag,
			startModeFlag,
			pollIntervalFlag,
			concurrencyFlag,
			receiveAddressFlag,
			assetFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			adminRequestLogsFlag,
			ntpServerFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "verify",
				Usage: "Audit the bonus ledger",
				Flags: []cli.Flag{
					dataDirFlag,
					bonusIntervalFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: verifyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx.Uint64(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name))

	interval, err := parseInterval(ctx)
	if err != nil {
		return err
	}
	mode, err := scheduler.ParseStartMode(ctx.String(startModeFlag.Name))
	if err != nil {
		return err
	}
	receiveAddress, err := parseReceiveAddress(ctx)
	if err != nil {
		return err
	}
	cfg, err := loadBonusConfig(ctx)
	if err != nil {
		return err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	nodeDB, err := openNodeDB(dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing node database..."); nodeDB.Close() }()

	transferDB, err := openTransferDB(dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing transfer database..."); transferDB.Close() }()

	pollInterval := ctx.Duration(pollIntervalFlag.Name)
	h := health.New(healthGap(pollInterval))

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		var requestLogs atomic.Bool
		requestLogs.Store(ctx.Bool(adminRequestLogsFlag.Name))
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, h, nodeDB, &requestLogs)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	sched := scheduler.New(nodeDB, cfg, interval, ctx.Int(concurrencyFlag.Name)).WithHealth(h)
	proc, err := lifecycle.New(nodeDB, transferDB, cfg, interval, lifecycle.Options{
		ReceiveAddress: receiveAddress,
		Asset:          ctx.String(assetFlag.Name),
	})
	if err != nil {
		return err
	}
	proc.WithHealth(h)

	printStartupMessage(dataDir, interval, receiveAddress, metricsURL, adminURL)

	return engine.New(sched, proc, engine.Options{
		StartMode:    mode,
		PollInterval: pollInterval,
		NTPServer:    ctx.String(ntpServerFlag.Name),
	}).Run(exitSignal)
}

func verifyAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	initLogger(ctx.Uint64(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name))

	interval, err := parseInterval(ctx)
	if err != nil {
		return err
	}
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatalf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	nodeDB, err := openNodeDB(dataDir)
	if err != nil {
		fatal(err)
	}
	defer nodeDB.Close()

	return verifyLedger(exitSignal, nodeDB, interval)
}
