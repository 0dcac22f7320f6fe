// internal/appconfig/parameter_templates.go
package appconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/mwiater/hashbench/internal/benchmark"
)

// ProfileName identifies a measurement preset.
type ProfileName string

const (
	ProfileShort   ProfileName = "short"
	ProfileDefault ProfileName = "default"
	ProfileLong    ProfileName = "long"
)

// OptionsForProfile selects a measurement preset by name.
// Behavior:
//   - empty string => default profile
//   - unknown string => error
func OptionsForProfile(name string) (benchmark.Options, error) {
	switch ProfileName(normalizeProfileName(name)) {
	case ProfileShort:
		return ShortRunOptions(), nil
	case "", ProfileDefault:
		return benchmark.DefaultOptions(), nil
	case ProfileLong:
		return LongRunOptions(), nil
	default:
		return benchmark.Options{}, fmt.Errorf("unknown profile %q (want short, default or long)", name)
	}
}

// ShortRunOptions trades precision for speed: short batches, few samples.
func ShortRunOptions() benchmark.Options {
	opts := benchmark.DefaultOptions()
	opts.MinBatchDuration = 25 * time.Millisecond
	opts.MaxWarmupBatches = 3
	opts.MeasuredBatches = 5
	return opts
}

// LongRunOptions collects more and longer batches for tighter error margins.
func LongRunOptions() benchmark.Options {
	opts := benchmark.DefaultOptions()
	opts.MinBatchDuration = 250 * time.Millisecond
	opts.MaxWarmupBatches = 20
	opts.MeasuredBatches = 30
	opts.Confidence = 0.99
	return opts
}

// ProfileNames returns the supported profile names.
func ProfileNames() []string {
	return []string{string(ProfileShort), string(ProfileDefault), string(ProfileLong)}
}

func normalizeProfileName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
