package sketch

import (
	"go.uber.org/zap"

	sketchfmt "github.com/reoring/sketchfmt"
	"github.com/reoring/sketchfmt/schema"
)

// Options configures decoding. When several are passed the last one wins.
type Options struct {
	sketchfmt.ParseOpt
	// Registry resolves document types. nil uses schema.Default().
	Registry *schema.Registry
	// Logger receives diagnostics. nil disables logging.
	Logger *zap.Logger
}

func (o Options) registry() *schema.Registry {
	if o.Registry == nil {
		return schema.Default()
	}
	return o.Registry
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
