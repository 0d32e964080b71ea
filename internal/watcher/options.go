package watcher

import "time"

// DefaultSettleDelay is how long a file must stay unchanged before it is reported.
const DefaultSettleDelay = 250 * time.Millisecond

// Options configures the file watcher behavior.
type Options struct {
	// SettleDelay is the quiet period required after the last write.
	SettleDelay time.Duration
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
}
