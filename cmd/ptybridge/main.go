// Command ptybridge bridges a host process to a Cygwin/MSYS2 pseudoterminal
// running an interactive shell, translating structured input records and
// out-of-band terminal-state queries across the pipe boundary.
package main

import (
	"fmt"
	"os"

	"github.com/nick/ptybridge/internal/bridge"
	"github.com/nick/ptybridge/internal/bridgecfg"
	"github.com/nick/ptybridge/internal/command"
	"github.com/nick/ptybridge/internal/inputrecord"
	"github.com/nick/ptybridge/internal/launch"
	"github.com/nick/ptybridge/internal/ptylog"
	"github.com/nick/ptybridge/internal/ptypump"
	"github.com/nick/ptybridge/internal/sigplane"
	"github.com/nick/ptybridge/internal/supervisor"
	"github.com/nick/ptybridge/internal/ttyadapter"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// Exit codes per the CLI contract: 0 success, 1 argument error, 2 OS call
// failed, 3 shell launch failed, -1 unexpected.
func run(args []string) int {
	if len(args) > 0 && args[0] == launch.SlaveSetupArg {
		return runSlaveSetup(args[1:])
	}

	opts, err := parseArgs(args)
	if err != nil {
		switch err {
		case errHelpRequested:
			fmt.Print(usage)
			return 0
		case errVersionRequested:
			fmt.Println(version)
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := ptylog.New(os.Stderr, opts.LogLevel, opts.Syslog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer logger.Close()

	sess, err := launch.Start(opts.Shell, opts.Rows, opts.Cols, opts.Dir, opts.Defaults)
	if err != nil {
		logger.Errorf("launch: %v", err)
		return 3
	}
	defer sess.PTY.Close()

	plane := sigplane.New(sess.PTY, sess.SlavePID)
	go plane.Run()
	defer plane.Stop()

	standAlone := opts.Mode == bridge.StandAlone

	var recSource inputrecord.Source
	var outSink ptypump.Sink
	var hostIn *os.File
	var ttyAdapter *ttyadapter.Adapter

	if standAlone {
		ttyAdapter = ttyadapter.New(os.Stdin, os.Stdout)
		defer ttyAdapter.Stop()
		recSource = ttyAdapter
		outSink = ttyAdapter
	} else {
		if opts.Inr != nil {
			recSource = &inputrecord.PipeSource{H: opts.Inr}
		} else {
			recSource = inputrecord.NoSource{}
		}
		outSink = ptypump.FileSink{F: opts.Out}
		hostIn = opts.Ins
	}

	recProc := &inputrecord.Processor{
		PTY:        sess.PTY,
		Source:     recSource,
		StandAlone: standAlone,
		WinSize:    &inputrecord.WinSize{},
		Logger:     logger.Std(),
	}
	if standAlone {
		recProc.Geometry = ttyAdapter
	}

	var cmdProc *command.Processor
	if opts.HasCommandChannel() {
		cmdProc = &command.Processor{Cin: opts.CmdIn, Cout: opts.CmdOut, PTYFd: int(sess.PTY.Fd())}
	}

	super := &supervisor.Supervisor{
		SlavePID:    sess.SlavePID,
		Commands:    cmdProc,
		Records:     recProc,
		Pump:        &ptypump.Pump{PTY: sess.PTY, Sink: outSink},
		HostIn:      hostIn,
		ManagedMode: !standAlone,
		Logger:      logger.Std(),
	}

	err = super.Run()
	if err == nil || err == supervisor.ErrSlaveExited {
		return 0
	}
	logger.Errorf("supervisor: %v", err)
	return 2
}

// runSlaveSetup handles the re-exec'd child: args is [dir, shell, shell-args...].
func runSlaveSetup(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "ptybridge: malformed slave setup invocation")
		return 1
	}
	dir := args[0]
	shell := args[1:]

	cfg, err := bridgecfg.Load(os.Getenv(launch.DefaultsEnvVar))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defaults, err := cfg.Resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if dir == "" {
		dir = cfg.Chdir
	}

	if err := launch.RunSlaveSetup(shell, dir, defaults); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 3
	}
	return 0 // unreachable on success: RunSlaveSetup execs into the shell
}
