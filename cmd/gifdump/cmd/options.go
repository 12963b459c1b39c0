package cmd

import (
	"os"

	"github.com/tidwall/gjson"
)

// runOptions holds the per-invocation tuning the CLI exposes beyond plain
// flags, loaded from --overrides when set. Only sample is read today; the
// JSON shape is deliberately open so future flags can land in the same file
// without a CLI surface change.
type runOptions struct {
	Sample int
}

func defaultRunOptions() runOptions {
	return runOptions{Sample: 1}
}

// loadOverrides reads path (if non-empty) as JSON and applies any recognized
// keys on top of opts using gjson, mirroring the teacher corpus's gjson
// usage for ad-hoc config probing rather than a full struct unmarshal.
func loadOverrides(path string, opts runOptions) (runOptions, error) {
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if !gjson.ValidBytes(data) {
		return opts, nil
	}
	result := gjson.ParseBytes(data)
	if v := result.Get("sample"); v.Exists() {
		if n := int(v.Int()); n > 0 {
			opts.Sample = n
		}
	}
	return opts, nil
}
