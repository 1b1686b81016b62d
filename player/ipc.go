package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ipcRequest is the JSON structure sent to mpv's IPC endpoint.
type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is any line received from mpv: a command reply or an event.
type ipcMessage struct {
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID int64           `json:"request_id"`

	Event     string `json:"event"`
	Name      string `json:"name"`
	ID        int    `json:"id"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

// ipcError is an error reply from mpv.
type ipcError struct {
	Command string
	Message string
}

func (e *ipcError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.Command, e.Message)
}

// isUnavailable reports whether err means the property has no value yet, e.g. nothing is loaded.
func isUnavailable(err error) bool {
	var ipcErr *ipcError
	return errors.As(err, &ipcErr) && ipcErr.Message == "property unavailable"
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	dialTimeout  = time.Second
	readDeadline = 2 * time.Second
	maxLineSize  = 1 << 20
)

type dialFunc func(addr string, timeout time.Duration) (net.Conn, error)

// ipcClient sends one command per connection and waits for the reply with the matching request id.
type ipcClient struct {
	addr string
	dial dialFunc

	mu  sync.Mutex
	seq atomic.Int64
}

func newIPCClient(addr string, dial dialFunc) *ipcClient {
	return &ipcClient{addr: addr, dial: dial}
}

// command retries transient connection errors. Errors reported by mpv are returned as is.
func (c *ipcClient) command(args ...any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		conn, err := c.dial(c.addr, dialTimeout)
		if err != nil {
			lastErr = fmt.Errorf("connect: %w", err)
			continue
		}

		data, err := c.exchange(conn, args)
		_ = conn.Close()
		return data, err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *ipcClient) exchange(conn net.Conn, args []any) (json.RawMessage, error) {
	id := c.seq.Add(1)

	payload, err := json.Marshal(ipcRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		// events are broadcast to every client, skip them
		if msg.Event != "" || msg.RequestID != id {
			continue
		}

		if msg.Error != "" && msg.Error != "success" {
			return nil, &ipcError{Command: fmt.Sprint(args[0]), Message: msg.Error}
		}
		return msg.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: connection closed before reply")
}

func (c *ipcClient) set(property string, value any) error {
	_, err := c.command("set_property", property, value)
	return err
}

func (c *ipcClient) get(property string, v any) error {
	data, err := c.command("get_property", property)
	if err != nil {
		return err
	}
	if len(data) == 0 || string(data) == "null" {
		return &ipcError{Command: "get_property", Message: "property unavailable"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("property %s: %w", property, err)
	}
	return nil
}

func (c *ipcClient) getFloat(property string) (float64, error) {
	var f float64
	err := c.get(property, &f)
	return f, err
}

// headerFields formats request headers for mpv's http-header-fields list option.
func headerFields(headers map[string]string) []string {
	fields := make([]string, 0, len(headers))
	for k, v := range headers {
		// list options are comma separated
		fields = append(fields, fmt.Sprintf("%s: %s", k, strings.ReplaceAll(v, ",", "%2C")))
	}
	return fields
}
