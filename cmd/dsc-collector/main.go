package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"EnigmaNetz/Enigma-Go-Collector/config"
	"EnigmaNetz/Enigma-Go-Collector/internal/arrays"
	"EnigmaNetz/Enigma-Go-Collector/internal/capture"
	"EnigmaNetz/Enigma-Go-Collector/internal/conffile"
	"EnigmaNetz/Enigma-Go-Collector/internal/dataset"
	"EnigmaNetz/Enigma-Go-Collector/internal/directive"
	"EnigmaNetz/Enigma-Go-Collector/internal/logger"
	"EnigmaNetz/Enigma-Go-Collector/internal/version"
)

func printHelp(flags *pflag.FlagSet) {
	fmt.Fprint(os.Stderr, `dsc-collector - DNS statistics collector

Usage: dsc-collector [flags] [dsc.conf]

Loads collector.json, then applies every directive in dsc.conf in order.
Loading stops at the first directive that fails.

Flags:
`)
	flags.PrintDefaults()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath   string
		debug        int
		promisc      bool
		check        bool
		showVersion  bool
		listIndexers bool
	)

	flags := pflag.NewFlagSet("dsc-collector", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to collector.json (default "+config.DefaultPath+")")
	flags.CountVarP(&debug, "debug", "d", "log to stderr instead of syslog; repeat for more trace output")
	flags.BoolVarP(&promisc, "promisc", "p", false, "open interfaces in promiscuous mode")
	flags.BoolVarP(&check, "check", "t", false, "load the configuration, report, and exit")
	flags.BoolVar(&showVersion, "version", false, "print version and exit")
	flags.BoolVar(&listIndexers, "list-indexers", false, "print the indexers datasets may use and exit")
	flags.BoolP("help", "h", false, "show help")

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flags)
			return nil
		}
		return err
	}
	if help, _ := flags.GetBool("help"); help {
		printHelp(flags)
		return nil
	}
	if showVersion {
		fmt.Println(version.Version)
		return nil
	}
	if listIndexers {
		for _, name := range arrays.Indexers() {
			fmt.Println(name)
		}
		return nil
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if debug > cfg.Logging.Debug {
		cfg.Logging.Debug = debug
	}
	if promisc {
		cfg.Collector.Promiscuous = true
	}
	if rest := flags.Args(); len(rest) > 0 {
		cfg.Collector.ConfFile = rest[0]
	}

	log, err := cfg.InitializeLogging()
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info("dsc-collector %s starting", version.Version)

	state := config.NewState(cfg.Collector.Promiscuous)
	engine := capture.NewEngine(state, log, cfg.Collector.SnapLen)
	defer engine.Close()

	factory, closeFactory, err := newArrayFactory(cfg, log)
	if err != nil {
		return err
	}
	defer closeFactory()

	store := arrays.NewStore()
	registry := dataset.NewRegistry(log, arrays.Chain(store, factory))
	handlers := directive.New(state, log, engine, registry)

	n, err := conffile.LoadFile(cfg.Collector.ConfFile, handlers.Table())
	if err != nil {
		log.Error("configuration load failed: %v", err)
		return err
	}

	log.Info("applied %d directives: %d interfaces, %d datasets", n, len(engine.Devices()), registry.Len())
	log.Trace(0, "state: %+v", *state)

	if check {
		for _, a := range store.Arrays() {
			fmt.Printf("%s\t%s:%s\t%s:%s\t%v\n", a.Name, a.First.Label, a.First.Indexer, a.Second.Label, a.Second.Indexer, a.Filters)
		}
	}
	return nil
}

// newArrayFactory returns the remote array service when one is configured.
// Without one, the local store is the only factory.
func newArrayFactory(cfg *config.Config, log *logger.Logger) (dataset.ArrayFactory, func(), error) {
	if cfg.Collector.ArrayService == "" {
		return arrays.Chain(), func() {}, nil
	}
	remote, err := arrays.DialRemote(cfg.Collector.ArrayService, cfg.Collector.ArrayServiceInsecure)
	if err != nil {
		return nil, nil, err
	}
	log.Info("forwarding datasets to array service %s", cfg.Collector.ArrayService)
	return remote, func() { remote.Close() }, nil
}
