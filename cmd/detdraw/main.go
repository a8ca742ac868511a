// Command detdraw compiles state snapshots into deterministic draw lists
// and inspects BDL1/BDL2 files.
//
// Usage:
//
//	detdraw compile [-format bdl1|bdl2] [-policy none|cap|summary -cap N] [-o out.bdl] state.json
//	detdraw decode [-bounds] file.bdl
//	detdraw verify [-hash blake2b-256:...] file.bdl
//	detdraw hash file.bdl
//	detdraw replay -store artifacts.db [-hash ...] state.json
//	detdraw colors [-colors pack.json] [name...]
//
// Every flag also reads a DETDRAW_* environment variable default.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/detdraw/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
		return
	case errors.Is(err, flag.ErrHelp):
		stop()
		os.Exit(0)
	case errors.Is(err, cli.ErrUsage):
		stop()
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	stop()
	os.Exit(1)
}
