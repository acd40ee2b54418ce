/*
 * ND100 - Main process.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"nd100/boot"
	config "nd100/config/configparser"
	"nd100/hostconsole"
	"nd100/machine"
	"nd100/telnet"
	logger "nd100/util/logger"
)

var Logger *slog.Logger

const snapshotFile = "cpustate.bin"

func main() {
	optConfig := getopt.StringLong("config", 'c', "nd100.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	debug := new(bool)
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, debug))
	slog.SetDefault(Logger)

	Logger.Info("ND100 Started")
	if *optConfig == "" {
		Logger.Error("Please specify a configuration file")
		os.Exit(1)
	}

	cfg, err := config.LoadFile(*optConfig)
	if err != nil {
		Logger.Error("loading configuration: " + err.Error())
		os.Exit(1)
	}
	*debug = cfg.Debug

	m := machine.New()

	if cfg.FloppyImage != "" {
		readOnly := cfg.FloppyImageAccess == "ro"
		if err := m.AttachFloppy(cfg.FloppyImage, readOnly); err != nil {
			Logger.Error("attaching floppy image: " + err.Error())
			os.Exit(1)
		}
	}

	loaded, err := hostconsole.LoadIfPresent(m.CPU, snapshotFile)
	if err != nil {
		Logger.Error("loading CPU snapshot: " + err.Error())
		os.Exit(1)
	}
	if loaded {
		Logger.Info("ND100 resumed from " + snapshotFile)
	} else if err := bootFromConfig(m, cfg); err != nil {
		Logger.Error("booting: " + err.Error())
		os.Exit(1)
	} else if cfg.Boot == config.BootBP || cfg.Boot == config.BootBPUN {
		m.CPU.Regs.SetP(cfg.Start)
	}

	var consoleServer, panelServer *telnet.Server
	if cfg.ScriptConsole == "" {
		consoleServer, err = telnet.ServeConsole("5101", m.Console)
		if err != nil {
			Logger.Error("starting console server: " + err.Error())
			os.Exit(1)
		}
	}
	if cfg.Panel {
		panelServer, err = telnet.ServePanel("5100", func() string {
			return fmt.Sprintf("instr=%d stopped=%v", m.CPU.InstrCount, m.CPU.Stopped)
		})
		if err != nil {
			Logger.Error("starting panel server: " + err.Error())
			os.Exit(1)
		}
	}

	watcher := hostconsole.New(m.CPU, snapshotFile)
	go watcher.Run()

	m.Start()

	timeTicker := time.NewTicker(time.Second)
	defer timeTicker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

loop:
	for {
		select {
		case <-sigChan:
			fmt.Println("Got quit signal")
			break loop
		case now := <-timeTicker.C:
			m.UpdateHostTime(now)
		}
	}

	Logger.Info("Shutting down CPU")
	m.Stop()
	if consoleServer != nil {
		consoleServer.Stop()
	}
	if panelServer != nil {
		panelServer.Stop()
	}
	Logger.Info("Servers stopped.")
}

// bootFromConfig loads the initial memory image named by cfg.Boot, per
// spec.md §6's boot key (bp, bpun or floppy — floppy boot is handled by
// the floppy controller's own bootstrap IOX sequence once attached, not
// here).
func bootFromConfig(m *machine.Machine, cfg *config.Config) error {
	switch cfg.Boot {
	case config.BootBP:
		return boot.LoadBPFile(cfg.FloppyImage, m.CPU.Mem)
	case config.BootBPUN:
		_, err := boot.LoadBPUNFile(cfg.FloppyImage, m.CPU.Mem)
		return err
	case config.BootFloppy, "":
		return nil
	default:
		return fmt.Errorf("main: unknown boot source %q", cfg.Boot)
	}
}
