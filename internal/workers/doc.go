/*
Package workers sizes the worker pools used by the scanner.

When running in a container the number of usable CPUs may be limited by
cgroup constraints. runtime.NumCPU() still reports the host's CPU count, while
GOMAXPROCS follows the container limit (Go 1.19+), so pool sizes are derived
from GOMAXPROCS.

Scan phases spend most of their time waiting on disk reads and on ffprobe, so
they use the I/O multiplier:

	n := workers.ForScan(cfg.ScanWorkers) // 0 means auto, capped at 8

Operators can pin the width with the SCAN_WORKERS environment variable:

	env:
	- name: SCAN_WORKERS
	  value: "4"

All functions are safe for concurrent use.
*/
package workers
