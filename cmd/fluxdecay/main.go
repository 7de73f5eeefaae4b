package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/fluxdecay/internal/app"
	"github.com/chrissnell/fluxdecay/internal/constants"
	"github.com/chrissnell/fluxdecay/internal/log"
	"github.com/chrissnell/fluxdecay/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to the YAML analysis configuration")
	debug := flag.Bool("debug", false, "Turn on debugging output, including every start-shift step")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", constants.AppName, constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Infof("%s %s starting", constants.AppName, constants.Version)

	filename, _ := filepath.Abs(*cfgFile)
	provider := config.NewYAMLProvider(filename)
	defer provider.Close()

	// Create and run the application
	application := app.New(provider, log.Component("app"))
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		log.Sync()
		os.Exit(1)
	}
}
