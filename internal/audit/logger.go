// Package audit records security-relevant account and event changes as
// structured log lines under the "audit" key.
package audit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Actions written by the API.
const (
	ActionRegister    = "user.register"
	ActionLogin       = "user.login"
	ActionDeleteUser  = "user.delete"
	ActionUpdateEvent = "event.update"
	ActionDeleteEvent = "event.delete"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type Entry struct {
	Timestamp    time.Time         `json:"timestamp"`
	Action       string            `json:"action"`
	Actor        string            `json:"actor"`
	ResourceType string            `json:"resource_type,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	IPAddress    string            `json:"ip_address"`
	Status       string            `json:"status"`
	Details      map[string]string `json:"details,omitempty"`
}

// Logger is safe to use as a nil pointer, which discards everything.
type Logger struct {
	out zerolog.Logger
}

func NewLoggerWithZerolog(logger zerolog.Logger) *Logger {
	return &Logger{out: logger.With().Str("component", "audit").Logger()}
}

// Log writes entry at info, or at warn for failures.
func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	event := l.out.Info()
	if entry.Status == StatusFailure {
		event = l.out.Warn()
	}

	fields := zerolog.Dict().
		Time("timestamp", entry.Timestamp).
		Str("action", entry.Action).
		Str("actor", entry.Actor).
		Str("ip_address", entry.IPAddress).
		Str("status", entry.Status)
	if entry.ResourceType != "" {
		fields = fields.Str("resource_type", entry.ResourceType).Str("resource_id", entry.ResourceID)
	}
	if len(entry.Details) > 0 {
		fields = fields.Interface("details", entry.Details)
	}
	event.Dict("audit", fields).Msg(entry.Action)
}

func (l *Logger) LogSuccess(action, actor, resourceType, resourceID, ipAddress string, details map[string]string) {
	l.Log(Entry{
		Action:       action,
		Actor:        actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Status:       StatusSuccess,
		Details:      details,
	})
}

func (l *Logger) LogFailure(action, actor, ipAddress string, details map[string]string) {
	l.Log(Entry{
		Action:    action,
		Actor:     actor,
		IPAddress: ipAddress,
		Status:    StatusFailure,
		Details:   details,
	})
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote address. Header values that are not IPs are ignored.
func ClientIP(r *http.Request) string {
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	for _, candidate := range []string{first, r.Header.Get("X-Real-IP")} {
		if ip := net.ParseIP(strings.TrimSpace(candidate)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
