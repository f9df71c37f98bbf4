package feed

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

const (
	eventRequest   = "data_request"
	eventBroadcast = "data_broadcast"
)

// frame is the envelope every feed message travels in.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type requestBody struct {
	Time int64 `json:"time"`
}

func writeRequest(conn *websocket.Conn, unixSeconds int64) error {
	data, err := json.Marshal(requestBody{Time: unixSeconds})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return conn.WriteJSON(frame{Event: eventRequest, Data: data})
}
