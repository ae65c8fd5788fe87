package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

var eventMu sync.Mutex

// Event emits a structured event log line: {"event": name, "time": ...,
// ...fields}. encoding/json marshals map keys in sorted order, matching
// the sorted-key JSON shape used by the rest of the gateway's event log
// (§4.10) — this is the Go-side counterpart to a Python log_event(name,
// **fields) helper, not a generic logging primitive, so it always writes
// regardless of the default logger's level.
func Event(name string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = name
	entry["time"] = time.Now().UTC().Format(time.RFC3339)

	data, err := json.Marshal(entry)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"event":%q,"marshal_error":%q}`, name, err.Error()))
	}
	eventMu.Lock()
	fmt.Fprintln(os.Stderr, string(data))
	eventMu.Unlock()
}
