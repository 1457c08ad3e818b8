package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	divd "github.com/iov-one/dividends/cmd/divd/app"
	"github.com/tendermint/tendermint/libs/log"
)

// Version is set at build time.
var Version = "dev"

var (
	flagHome     = "home"
	flagLogLevel = "log-level"
	varHome      *string
	varLogLevel  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".divd")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")
	varLogLevel = flag.String(flagLogLevel, "info", "log level: debug, info, error or none")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("divd")
	fmt.Println("          Dividend distribution engine")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Write a genesis file to the home directory")
	fmt.Println("replay    Replay a script of blocks on top of the stored state")
	fmt.Println("query     Query the committed state")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.divd")
  -log-level string
        log level: debug, info, error or none (default "info")`)
}

func main() {
	flag.Parse()

	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr)).
		With("module", "divd")
	lvl, err := log.AllowLevel(*varLogLevel)
	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		os.Exit(1)
	}
	logger = log.NewFilter(logger, lvl)

	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = divd.InitCmd(logger, *varHome, rest)
	case "replay":
		err = divd.ReplayCmd(logger, *varHome, rest, os.Stdout)
	case "query":
		err = divd.QueryCmd(logger, *varHome, rest, os.Stdout)
	case "version":
		fmt.Println(Version)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
