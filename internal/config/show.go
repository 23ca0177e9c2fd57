package config

import (
	"fmt"
	"io"
)

// RenderEffective writes the resolved configuration as TOML-like text, for
// "bcctl config show".
func RenderEffective(r *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	if r.ConfigPath != "" {
		ew.printf("# Effective configuration (file: %s)\n\n", r.ConfigPath)
	} else {
		ew.printf("# Effective configuration (no config file)\n\n")
	}

	ew.printf("credentials_file    = %q\n", r.CredentialsFile)
	ew.printf("endpoint            = %q\n", r.Endpoint)
	ew.printf("user_agent          = %q\n", r.UserAgent)
	ew.printf("timeout             = %q\n", r.Timeout.String())
	ew.printf("requests_per_second = %g\n", r.RequestsPerSecond)
	ew.printf("sample_delay        = %q\n", r.SampleDelay.String())
	ew.printf("log_level           = %q\n", r.LogLevel)
	ew.printf("ledger_path         = %q\n", r.LedgerPath)
	ew.printf("\n[twin]\n")
	ew.printf("listen       = %q\n", r.Twin.Listen)
	ew.printf("strict_masks = %t\n", r.Twin.StrictMasks)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
