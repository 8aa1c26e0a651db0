// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/sea-bonus/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the node and transfer databases",
	}
	bonusConfigFlag = cli.StringFlag{
		Name:  "bonus-config",
		Usage: "path to a YAML file with the bonus tables (embedded defaults when empty)",
	}
	bonusIntervalFlag = cli.Int64Flag{
		Name:  "bonus-interval",
		Value: 86400,
		Usage: "seconds between two bonus ticks",
	}
	startModeFlag = cli.StringFlag{
		Name:  "start-mode",
		Value: "midnight",
		Usage: "first bonus time of a fresh database (immediate|midnight)",
	}
	pollIntervalFlag = cli.DurationFlag{
		Name:  "poll-interval",
		Value: 10 * time.Second,
		Usage: "idle wait between two engine steps",
	}
	concurrencyFlag = cli.IntFlag{
		Name:  "concurrency",
		Value: 0,
		Usage: "workers per layer, 0 uses every cpu",
	}
	receiveAddressFlag = cli.StringFlag{
		Name:  "receive-address",
		Usage: "address receiving the node deposits",
	}
	assetFlag = cli.StringFlag{
		Name:  "asset",
		Value: "SEA",
		Usage: "asset of the node deposits",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: uint64(log.LegacyLevelInfo),
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	adminRequestLogsFlag = cli.BoolFlag{
		Name:  "admin-request-logs",
		Usage: "log every request to the admin server",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server for the clock offset check, empty disables it",
	}
)
