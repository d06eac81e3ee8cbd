package main

import (
	"flag"
	"fmt"
	"log"
)

const usage = `usage: plotl [-addr=<host:port>] <command> [<args>]

Configuration flags:

   -addr       The host and port the serve command listens on.

Scale server commands
   serve       Serve scale records on a websocket hub endpoint
   reg         Print the builtin scale variant registry

Other commands
   help        Display help message
   repl        Runs a read-eval-print-loop against an in-process scale server
`

var addrFlag = flag.String("addr", "localhost:8090", "server host and port")

func main() {
	flag.Parse()
	log.SetFlags(0)
	args := flag.Args()
	if len(args) == 0 {
		log.Printf("missing command\n\n")
		fmt.Print(usage)
		return
	}
	args = args[1:]
	var err error
	switch cmd := flag.Arg(0); cmd {
	case "serve":
		err = serve(args)
	case "reg":
		err = reg(args)
	case "repl":
		err = repl(args)
	case "help":
		fmt.Print(usage)
	default:
		log.Printf("unknown command: %s\n\n", cmd)
		fmt.Print(usage)
	}
	if err != nil {
		log.Fatalf("%s error: %+v\n", flag.Arg(0), err)
	}
}
