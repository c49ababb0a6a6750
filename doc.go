// Linekeeper is a Go package that batches lines and writes every batch to its own, freshly named segment.
//
// It is meant to sit beneath exporters that emit line based records, such as time-series line protocol,
// and need batching, thread-safety and rotation without reimplementing them.
// Linekeeper does not look into the lines it writes.
//
// # Building Blocks
//
// The package is a chain of small pieces that can be used on their own:
//
//   - [NameGenerator] renders names from a macro template, see package [github.com/trviph/linekeeper/macro].
//   - [SegmentSink] opens a destination named by a NameGenerator on Begin, writes lines and finishes it on Commit.
//   - [SegmentWriter] writes one batch as one segment: Begin, WriteLine for every line, Commit.
//   - [LineBuffer] accumulates lines and hands them to a [BatchWriter] or a [LineSink] once a threshold is reached.
//   - [SafeLineBuffer] serializes a LineBuffer behind a mutex.
//   - [FileTransport] and [StreamWriter] are the byte destinations shipped with the package,
//     package [github.com/trviph/linekeeper/redistransport] writes segments to Redis lists.
//
// For example, the following code writes every two lines to a new numbered file:
//
//	names := linekeeper.NewNameGenerator("/tmp/batch-%NUM:4%.lp", 0, nil)
//	sink := linekeeper.NewSegmentSink(names, linekeeper.NewFileTransport(0, false), linekeeper.CommitClose)
//	buf := linekeeper.NewLineBuffer(2, linekeeper.NewSegmentWriter(sink))
//	defer buf.Close()
//
//	buf.Write("cpu,host=a usage=0.5")
//	buf.Write("cpu,host=b usage=0.7") // writes /tmp/batch-0000.lp
//
// # Template Macros
//
// A template is literal text with macros enclosed in '%':
//
//	%NUM:W% %COUNTER:W%       the segment counter, zero padded to at least W digits
//	%YEAR% %MONTH% %DAY%      the UTC date, sampled once per name
//	%HOUR% %MINUTE% %SECOND%  the UTC time, sampled once per name
//	%%                        a literal '%'
//
// Unknown macros render as nothing and a macro left open at the end of a template is ignored.
//
// # The Keeper Struct
//
// [Keeper] assembles the whole chain, SafeLineBuffer over SegmentWriter over SegmentSink over FileTransport,
// and implements [io.WriteCloser] so it plays nicely with the standard [log] package.
// To create a Keeper, use the [NewKeeper] function with WithXxx options:
//
//	keeper, err := linekeeper.NewKeeper(
//		linekeeper.WithName("cpu"),
//		linekeeper.WithFolder("/var/spool/metrics"),
//		linekeeper.WithTemplate("%NAME%-%YEAR%%MONTH%%DAY%-%NUM:6%%EXT%"),
//		linekeeper.WithExtension(".lp"),
//		linekeeper.WithThreshold(5000),
//		linekeeper.WithCron("* * * * *"),
//	)
//	if err != nil {
//		// Handle error
//	}
//	defer keeper.Close()
//
// Every [Keeper.Write] splits its input on newlines. Once the threshold is reached,
// the pending lines are written to a new segment which is flushed and closed before Write returns.
// [Keeper.Emit] and the cron schedule of [WithCron] write a partial batch early,
// [Keeper.Close] writes whatever is left.
//
// A Keeper with the same name is safe to use in multiple goroutines in the same process,
// but not safe when using on multiple processes.
package linekeeper
