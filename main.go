package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/aryanA101a/lc3-vm-go/translate"
	"github.com/aryanA101a/lc3-vm-go/vm"
)

var f = translate.From

const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitInterrupt = -2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	var verbose bool
	var logFile string

	flags := flag.NewFlagSet("lc3", flag.ContinueOnError)
	flags.SetOutput(stdout)
	flags.BoolVar(&verbose, "v", false, "Trace executed instructions to the log")
	flags.StringVar(&logFile, "l", "", "Log file (default stderr with -v, otherwise discarded)")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), f("lc3 [image-file1] ..."))
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if flags.NArg() < 1 {
		flags.Usage()
		return exitUsage
	}

	switch {
	case logFile != "":
		logf, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Printf("%v: %v", logFile, err)
			return exitFailure
		}
		defer logf.Close()
		log.SetOutput(logf)
		defer log.SetOutput(os.Stderr)
	case !verbose:
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	machine, err := vm.NewVM(stdin, stdout, flags.Args()...)
	if err != nil {
		var loadErr *vm.ErrImageLoad
		if errors.As(err, &loadErr) {
			fmt.Fprintln(stdout, f("failed to load image: %s", loadErr.Path))
		}
		log.Print(err)
		return exitFailure
	}
	machine.SetVerbose(verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			machine.RestoreTerminal()
			fmt.Fprintln(stdout)
			os.Exit(exitInterrupt)
		case <-finished:
		}
	}()

	err = machine.Start()
	if serr := machine.Stop(); err == nil {
		err = serr
	}
	if err != nil {
		fmt.Fprintln(stdout, f("lc3: %v", err))
		log.Print(err)
		return exitFailure
	}

	return exitOK
}
