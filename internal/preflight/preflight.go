package preflight

import (
	"context"
	"strings"

	"enasubmit/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects the optional checks.
type Options struct {
	// RunFile is the data file the chain will upload.
	RunFile string
	// Network adds TCP reachability checks for the drop-box and FTP host.
	Network bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckCredentials(cfg),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if file := strings.TrimSpace(opts.RunFile); file != "" {
		results = append(results, CheckFileReadable("Run file", file))
	}
	if opts.Network {
		results = append(results,
			CheckTCP(ctx, "Drop-box", endpointAddress(cfg.SubmitURL()), cfg.FTPTimeout()),
			CheckTCP(ctx, "FTP host", cfg.Webin.FTPHost, cfg.FTPTimeout()),
		)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
