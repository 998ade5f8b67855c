// Command vidscan inventories a directory tree of video files from the
// command line.
//
// Usage:
//
//	vidscan [flags] <command> [args]
//
// Commands:
//
//	scan <root>       Walk root, probe every video with ffprobe, fingerprint
//	                  it and store the results. Progress is printed live.
//	list              Print every stored file with its metadata.
//	stats             Print inventory totals and the last scan.
//	export <file>     Write an M3U playlist of every stored file that still
//	                  exists. Use "-" for standard output.
//
// Flags:
//
//	-db path          Store location (default: $DATABASE_DIR/inventory.db,
//	                  or ./inventory.db when DATABASE_DIR is unset)
//	-workers n        Workers per scan phase (default: 8, capped by CPUs)
//	-timeout d        Per-file timeout in each phase (default: 30s)
//	-sample size      Fingerprint sample size, e.g. 2MiB (default: 2MiB)
//	-ffprobe path     ffprobe binary (default: ffprobe from PATH)
//	-v                Print every per-file event and debug logs
//	-no-color         Disable coloured output
//
// Exit status is 0 on success, 1 on runtime errors or an aborted scan, and 2
// on usage errors or an invalid scan root. Interrupting a scan aborts it;
// files not yet started are reported as aborted and the summary is still
// printed.
package main
