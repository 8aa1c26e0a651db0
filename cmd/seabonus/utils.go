// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/sea-bonus/address"
	"github.com/vechain/sea-bonus/bonus"
	"github.com/vechain/sea-bonus/log"
	"github.com/vechain/sea-bonus/nodedb"
	"github.com/vechain/sea-bonus/transferdb"
)

const (
	nodeDBName     = "nodes.db"
	transferDBName = "transfers.db"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fatal(fmt.Sprintf(format, args...))
}

func initLogger(verbosity uint64, jsonLogs bool) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(int(verbosity))
	var level slog.LevelVar
	level.Set(logLevel)

	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(os.Stderr, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.sea.bonus")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.sea.bonus")
		} else {
			return filepath.Join(home, ".org.sea.bonus")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openNodeDB(dataDir string) (*nodedb.NodeDB, error) {
	path := filepath.Join(dataDir, nodeDBName)
	db, err := nodedb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open node database [%v]", path)
	}
	return db, nil
}

func openTransferDB(dataDir string) (*transferdb.TransferDB, error) {
	path := filepath.Join(dataDir, transferDBName)
	db, err := transferdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open transfer database [%v]", path)
	}
	return db, nil
}

func loadBonusConfig(ctx *cli.Context) (*bonus.Config, error) {
	path := ctx.String(bonusConfigFlag.Name)
	if path == "" {
		return bonus.DefaultConfig(), nil
	}
	cfg, err := bonus.LoadConfig(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load bonus config [%v]", path)
	}
	return cfg, nil
}

func parseInterval(ctx *cli.Context) (int64, error) {
	interval := ctx.Int64(bonusIntervalFlag.Name)
	if interval <= 0 {
		return 0, errors.Errorf("invalid -%s %d", bonusIntervalFlag.Name, interval)
	}
	return interval, nil
}

func parseReceiveAddress(ctx *cli.Context) (string, error) {
	addr := ctx.String(receiveAddressFlag.Name)
	if addr == "" {
		return "", errors.Errorf("missing -%s", receiveAddressFlag.Name)
	}
	if err := address.Validate(addr); err != nil {
		return "", errors.Wrapf(err, "invalid -%s", receiveAddressFlag.Name)
	}
	return addr, nil
}

// healthGap is how long the engine may stay silent before it reports unhealthy.
func healthGap(pollInterval time.Duration) time.Duration {
	return max(10*pollInterval, time.Minute)
}

// makeName creates a name string in the form name/version/os/go-version.
func makeName(name, version string) string {
	return fmt.Sprintf("%s/v%s/%s/%s", name, version, runtime.GOOS, runtime.Version())
}

func printStartupMessage(
	dataDir string,
	interval int64,
	receiveAddress string,
	metricsURL string,
	adminURL string,
) {
	fmt.Printf(`Starting %v
    Data dir        [ %v ]
    Bonus interval  [ %v ]
    Receive address [ %v ]
    Metrics         [ %v ]
    Admin           [ %v ]
`,
		makeName("SeaBonus", fullVersion()),
		dataDir,
		time.Duration(interval)*time.Second,
		receiveAddress,
		func() string {
			if metricsURL == "" {
				return "Disabled"
			}
			return metricsURL
		}(),
		func() string {
			if adminURL == "" {
				return "Disabled"
			}
			return adminURL
		}(),
	)
}
