package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/trviph/linekeeper"
	"github.com/trviph/linekeeper/internal/logger"
	"github.com/trviph/linekeeper/internal/metrics"
	"github.com/trviph/linekeeper/redistransport"
)

const (
	cliName        = "linekeeper"
	cliDescription = "batch line protocol records into rotating, template named segments."
)

// GlobalFlags are shared by every subcommand.
type GlobalFlags struct {
	Debug bool
}

// KeeperFlags configure the Keeper built by pipe and serve.
type KeeperFlags struct {
	Name         string
	Folder       string
	Template     string
	Extension    string
	Threshold    int
	Counter      uint64
	Commit       string
	MaxSegments  int
	Cron         string
	BufferSize   int
	RedisAddr    string
	RedisTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	globalFlags := new(GlobalFlags)
	rootCmd := &cobra.Command{
		Use:          cliName,
		Short:        cliDescription,
		SilenceUsage: true,
		Long: `linekeeper buffers lines, such as time-series line protocol records,
and writes every batch to its own segment named from a macro template.

Template macros: %NUM:W% %COUNTER:W% %YEAR% %MONTH% %DAY% %HOUR% %MINUTE%
%SECOND% %NAME% %EXT% and %% for a literal '%'.
`,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Debug, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(
		newPipeCmd(globalFlags),
		newServeCmd(globalFlags),
		newRenderCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func bindKeeperFlags(fs *pflag.FlagSet, f *KeeperFlags) {
	fs.StringVarP(&f.Name, "name", "n", cliName, "keeper name, available to templates as %NAME%")
	fs.StringVarP(&f.Folder, "folder", "f", ".", "folder where segment files are created")
	fs.StringVarP(&f.Template, "template", "t", linekeeper.DefaultTemplate, "segment name template")
	fs.StringVarP(&f.Extension, "extension", "e", ".lp", "segment extension, available to templates as %EXT%")
	fs.IntVarP(&f.Threshold, "threshold", "b", 1000, "lines per segment, 0 or 1 writes every line to its own segment")
	fs.Uint64Var(&f.Counter, "counter", 0, "initial value of %NUM%")
	fs.StringVar(&f.Commit, "commit", linekeeper.CommitClose.String(), "what a commit does with the transport: close or flush")
	fs.IntVar(&f.MaxSegments, "max-segments", 0, "number of segments to keep, 0 keeps all")
	fs.StringVar(&f.Cron, "cron", "", "cron spec to flush partial batches, e.g. \"@every 10s\"")
	fs.IntVar(&f.BufferSize, "buffer-size", linekeeper.DefaultBufferSize, "write buffer of segment files in bytes")
	fs.StringVar(&f.RedisAddr, "redis-addr", "", "write segments to Redis lists at this address instead of files")
	fs.DurationVar(&f.RedisTimeout, "redis-timeout", 5*time.Second, "timeout of every Redis call")
}

// options turns the flags into Keeper options.
func (f *KeeperFlags) options(log *logger.Logger, reg prometheus.Registerer) ([]linekeeper.Opt, func() error, error) {
	policy, err := linekeeper.ParseCommitPolicy(f.Commit)
	if err != nil {
		return nil, nil, err
	}
	opts := []linekeeper.Opt{
		linekeeper.WithName(f.Name),
		linekeeper.WithFolder(f.Folder),
		linekeeper.WithTemplate(f.Template),
		linekeeper.WithExtension(f.Extension),
		linekeeper.WithThreshold(f.Threshold),
		linekeeper.WithCounter(f.Counter),
		linekeeper.WithCommitPolicy(policy),
		linekeeper.WithMaxSegments(f.MaxSegments),
		linekeeper.WithCron(f.Cron),
		linekeeper.WithBufferSize(f.BufferSize),
		linekeeper.WithLogger(*log.WithKeeper(f.Name).Logger),
	}
	if reg != nil {
		m, err := metrics.New(reg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to register metrics, caused by %w", err)
		}
		opts = append(opts, linekeeper.WithSinkWrapper(m.Wrap))
	}

	cleanup := func() error { return nil }
	if len(f.RedisAddr) > 0 {
		client := redistransport.NewGoRedisClient(f.RedisAddr)
		opts = append(opts, linekeeper.WithTransport(redistransport.New(client, f.RedisTimeout)))
		cleanup = client.Close
	}
	return opts, cleanup, nil
}
