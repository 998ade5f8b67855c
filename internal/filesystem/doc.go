/*
Package filesystem wraps os.Stat and os.Open with retry logic for NFS stale
file handle errors (ESTALE), so scans over network mounts survive transient
server-side changes.

Only ESTALE triggers a retry; every other error is returned immediately.
Retries back off exponentially (50ms, 100ms, 200ms by default, capped at
MaxBackoff).

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

Metric recording goes through the Observer interface, installed at startup
with SetObserver(metrics.NewFilesystemObserver()). Volume labels come from a
VolumeResolver that maps path prefixes (the scan root, the database
directory) to short names.

PathExistsOnDisk is part of the read contract offered to presentation layers:
it answers whether a stored record's path can still be opened.
*/
package filesystem
