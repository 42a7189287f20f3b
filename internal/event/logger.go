package event

import (
	"encoding/json"

	"github.com/bpqx-io/bpqx/internal/logging"
)

// SubscribeLogger attaches a zerolog subscriber to the global bus that
// records every event at debug level. Returns an unsubscribe function.
func SubscribeLogger() func() {
	return SubscribeAll(func(ev Event) {
		data, _ := json.Marshal(ev.Data)
		logging.Debug().
			Str("event", string(ev.Type)).
			RawJSON("data", data).
			Msg("event published")
	})
}
