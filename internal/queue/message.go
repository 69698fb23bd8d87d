// Package queue carries prewarm jobs over RabbitMQ so cache warming can run
// outside the request that asked for it.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dharmasatrya/tripfares/internal/prewarm"
)

const DefaultQueueName = "tripfares.prewarm"

// JobMessage is one prewarm job on the wire.
type JobMessage struct {
	BatchID    string      `json:"batch_id"`
	Job        prewarm.Job `json:"job"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
}

func Encode(m JobMessage) ([]byte, error) {
	return json.Marshal(m)
}

func Decode(body []byte) (JobMessage, error) {
	var m JobMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return JobMessage{}, fmt.Errorf("unmarshal: %w", err)
	}
	if m.Job.Origin == "" || m.Job.Pax == 0 || m.Job.Year == 0 || m.Job.Month == 0 {
		return JobMessage{}, fmt.Errorf("incomplete job in batch %q", m.BatchID)
	}
	return m, nil
}
