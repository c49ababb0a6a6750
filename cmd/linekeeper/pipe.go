package main

import (
	"bufio"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/trviph/linekeeper"
	"github.com/trviph/linekeeper/internal/logger"
)

func newPipeCmd(globalFlags *GlobalFlags) *cobra.Command {
	keeperFlags := new(KeeperFlags)
	cmd := &cobra.Command{
		Use:     "pipe",
		Short:   "read lines from stdin and write them to segments",
		Example: `  telegraf --test | linekeeper pipe -f /var/spool/metrics -t "cpu-%YEAR%%MONTH%%DAY%-%NUM:6%%EXT%" -b 5000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.New(cmd.ErrOrStderr(), globalFlags.Debug).WithComponent("pipe")
			return runPipe(cmd.InOrStdin(), keeperFlags, log)
		},
	}
	bindKeeperFlags(cmd.Flags(), keeperFlags)
	return cmd
}

func runPipe(in io.Reader, keeperFlags *KeeperFlags, log *logger.Logger) error {
	opts, cleanup, err := keeperFlags.options(log, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	keeper, err := linekeeper.NewKeeper(opts...)
	if err != nil {
		return err
	}

	lines := 0
	reader := bufio.NewReader(in)
	copyErr := func() error {
		for {
			line, err := reader.ReadString('\n')
			if len(line) > 0 {
				if _, werr := keeper.Write([]byte(line)); werr != nil {
					return werr
				}
				if line[len(line)-1] == '\n' {
					lines++
				}
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}()
	segment := keeper.Segment()
	closeErr := keeper.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		log.Error().Err(err).Msg("pipe failed")
		return err
	}
	log.Info().Int("lines", lines).Str("last_segment", segment).Msg("done")
	return nil
}
