package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/trviph/linekeeper"
	"github.com/trviph/linekeeper/internal/httpapi"
	"github.com/trviph/linekeeper/internal/logger"
)

func newServeCmd(globalFlags *GlobalFlags) *cobra.Command {
	keeperFlags := new(KeeperFlags)
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "accept lines over HTTP and write them to segments",
		Long: `serve accepts newline separated records on POST /write, flushes pending
lines on POST /flush and exposes Prometheus metrics on GET /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.New(cmd.ErrOrStderr(), globalFlags.Debug).WithComponent("serve")
			return runServe(listen, keeperFlags, log)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", ":8186", "address to listen on")
	bindKeeperFlags(cmd.Flags(), keeperFlags)
	return cmd
}

func runServe(listen string, keeperFlags *KeeperFlags, log *logger.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts, cleanup, err := keeperFlags.options(log, reg)
	if err != nil {
		return err
	}
	defer cleanup()

	keeper, err := linekeeper.NewKeeper(opts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    listen,
		Handler: httpapi.New(keeper, reg, *log.Logger).Handler(),
	}
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listen).Str("keeper", keeper.Name()).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case sig := <-stop:
		log.Info().Stringer("signal", sig).Msg("shutting down")
		serveErr = srv.Close()
	case serveErr = <-errc:
	}
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}
	return errors.Join(serveErr, linekeeper.CloseAll())
}
