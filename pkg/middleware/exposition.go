package middleware

import (
	"bytes"
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/strand-dev/strand/pkg/server"
)

// Exposition returns a handler serving the Prometheus text exposition
// format through the Strand server itself, so a metrics route can be
// mounted like any other:
//
//	d.HandleFunc("/metrics", middleware.Exposition(nil))
//
// A nil gatherer uses prometheus.DefaultGatherer.
func Exposition(gatherer prometheus.Gatherer) server.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	format := expfmt.NewFormat(expfmt.TypeTextPlain)

	return func(ctx context.Context, conn *server.Connection) server.Result {
		families, err := gatherer.Gather()
		if err != nil {
			return server.BodyWithStatus(500, []byte("metrics gather failed"))
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, format)
		for _, family := range families {
			if err := encoder.Encode(family); err != nil {
				return server.BodyWithStatus(500, []byte("metrics encode failed"))
			}
		}

		conn.SetHeader("Content-Type", string(format))
		return server.Body(buf.Bytes())
	}
}
