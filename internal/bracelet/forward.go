package bracelet

import (
	"fmt"
	"io"
	"strconv"

	"github.com/wearable-data/hmpdetector/internal/monitoring"
	"github.com/wearable-data/hmpdetector/internal/publish"
)

// Interval events carry their own namespace: the wire key for a model's
// activation is Bracelet.HMP.<name>.
const keyPrefix = "Bracelet.HMP."

// LiveForwarder adapts tracker events to the live wire format used by the
// simple policy: the current possibility while an interval is open, a single
// "0" at close.
func LiveForwarder(pub publish.Publisher) func(Event) {
	return func(e Event) {
		var err error
		switch e.Kind {
		case Opened, Updated:
			err = pub.Publish(keyPrefix+e.Model, formatFloat(e.Possibility))
		case Closed:
			err = pub.Publish(keyPrefix+e.Model, "0")
		}
		if err != nil {
			monitoring.Logf("publish interval event: %v", err)
		}
	}
}

// ReportWriter adapts tracker events to the offline report format: one line
// per closed interval.
func ReportWriter(w io.Writer) func(Event) {
	return func(e Event) {
		if e.Kind != Closed {
			return
		}
		fmt.Fprintf(w, "HMP.%s [%d;%d]-[%d;%d]: %s\n",
			e.Model, e.Start[0], e.Start[1], e.End[0], e.End[1], formatFloat(e.Possibility))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
