// Package memory configures the Go runtime memory limit for containers.
//
// When the server runs under a memory limit (for example a Kubernetes pod
// with MEMORY_LIMIT passed through the Downward API), [ConfigureFromEnv]
// sets GOMEMLIMIT to a share of it so the garbage collector works harder
// before the container is killed. An explicit GOMEMLIMIT always wins.
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
package memory
