// dsc-arrayd accepts dataset definitions from collectors over gRPC and
// builds their arrays locally.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"EnigmaNetz/Enigma-Go-Collector/internal/arrays"
	"EnigmaNetz/Enigma-Go-Collector/internal/dataset"
	"EnigmaNetz/Enigma-Go-Collector/internal/logger"
	"EnigmaNetz/Enigma-Go-Collector/internal/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loggingFactory logs every array it builds
type loggingFactory struct {
	store *arrays.Store
	log   *logger.Logger
}

func (f *loggingFactory) CreateArray(def dataset.Definition) error {
	if err := f.store.CreateArray(def); err != nil {
		f.log.Error("rejected dataset %s: %v", def.Name, err)
		return err
	}
	f.log.Info("built array %s (%s:%s x %s:%s)", def.Name, def.First.Label, def.First.Indexer, def.Second.Label, def.Second.Indexer)
	return nil
}

func run(args []string) error {
	var (
		listen string
		debug  int
		tag    string
	)
	flags := pflag.NewFlagSet("dsc-arrayd", pflag.ContinueOnError)
	flags.StringVar(&listen, "listen", "127.0.0.1:7453", "address to serve the array service on")
	flags.CountVarP(&debug, "debug", "d", "log to stderr instead of syslog")
	flags.StringVar(&tag, "tag", "dsc-arrayd", "system logger identifier")
	if err := flags.Parse(args); err != nil {
		return err
	}

	log, err := logger.NewLogger(logger.Config{Debug: debug, Tag: tag})
	if err != nil {
		return err
	}
	defer log.Close()

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listen, err)
	}

	srv := grpc.NewServer()
	arrays.RegisterArrayService(srv, arrays.NewServer(&loggingFactory{store: arrays.NewStore(), log: log}))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutting down")
		srv.GracefulStop()
	}()

	log.Info("dsc-arrayd %s serving on %s", version.Version, lis.Addr())
	return srv.Serve(lis)
}
