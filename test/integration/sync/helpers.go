// Package sync provides an in-process dashboard stand-in for the
// integration tests: the admin REST surface plus the websocket push
// channel, with mutable state and broadcast on every change.
package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

// TaskState is a task as the fake dashboard stores it.
type TaskState struct {
	ID           string `json:"id"`
	OwnerEmail   string `json:"ownerEmail"`
	DocumentName string `json:"documentName"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
}

// GrantState is an access grant as the fake dashboard stores it.
type GrantState struct {
	ID               string `json:"id"`
	GroupID          string `json:"groupId"`
	ProviderConfigID string `json:"providerConfigId"`
	SortOrder        int    `json:"sortOrder"`
}

// Dashboard is a fake dashboard server: REST admin API plus the websocket
// push channel. Mutating REST calls update the stored state and broadcast
// the change to every connected websocket client, like the real server.
type Dashboard struct {
	server *httptest.Server

	mu        sync.Mutex
	tasks     []*TaskState
	grants    []*GrantState
	conns     map[*websocket.Conn]struct{}
	wsEnabled bool
}

// NewDashboard starts a fake dashboard and registers its shutdown on test
// cleanup.
func NewDashboard(t *testing.T) *Dashboard {
	t.Helper()

	d := &Dashboard{
		conns:     map[*websocket.Conn]struct{}{},
		wsEnabled: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/ws", d.handleWebsocket)
	mux.HandleFunc("/api/admin/tasks", d.handleListTasks)
	mux.HandleFunc("/api/tasks/", d.handleTask)
	mux.HandleFunc("/api/admin/groups/", d.handleAccess)

	d.server = httptest.NewServer(mux)
	t.Cleanup(d.Close)

	return d
}

// URL returns the dashboard base URL.
func (d *Dashboard) URL() string { return d.server.URL }

// Close shuts the server down, dropping every websocket client first.
func (d *Dashboard) Close() {
	d.DropConnections()
	d.server.Close()
}

// SeedTasks replaces the stored tasks.
func (d *Dashboard) SeedTasks(tasks ...TaskState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tasks = nil
	for i := range tasks {
		task := tasks[i]
		d.tasks = append(d.tasks, &task)
	}
}

// SeedGrants replaces the stored grants.
func (d *Dashboard) SeedGrants(grants ...GrantState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.grants = nil
	for i := range grants {
		grant := grants[i]
		d.grants = append(d.grants, &grant)
	}
}

// SetWebsocketEnabled toggles whether /api/ws accepts connections. Disabled
// means every upgrade attempt is rejected, forcing clients onto polling.
func (d *Dashboard) SetWebsocketEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.wsEnabled = enabled
}

// UpdateTask mutates a stored task server-side and pushes the partial
// update, simulating progress made by a translation worker.
func (d *Dashboard) UpdateTask(id string, update func(*TaskState)) {
	d.mu.Lock()
	for _, task := range d.tasks {
		if task.ID == id {
			update(task)
		}
	}
	d.mu.Unlock()
}

// Push broadcasts one event frame to every connected websocket client.
func (d *Dashboard) Push(eventType string, entity any) {
	rawEntity, err := json.Marshal(entity)
	if err != nil {
		panic(err)
	}
	frame, err := json.Marshal(map[string]json.RawMessage{
		"type":   json.RawMessage(`"` + eventType + `"`),
		"entity": rawEntity,
	})
	if err != nil {
		panic(err)
	}

	d.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(d.conns))
	for c := range d.conns {
		conns = append(conns, c)
	}
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, c := range conns {
		_ = c.Write(ctx, websocket.MessageText, frame)
	}
}

// ConnCount returns the number of connected websocket clients.
func (d *Dashboard) ConnCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.conns)
}

// DropConnections closes every websocket client, simulating a server-side
// connection loss.
func (d *Dashboard) DropConnections() {
	d.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(d.conns))
	for c := range d.conns {
		conns = append(conns, c)
	}
	d.conns = map[*websocket.Conn]struct{}{}
	d.mu.Unlock()

	for _, c := range conns {
		_ = c.Close(websocket.StatusGoingAway, "dropped")
	}
}

func (d *Dashboard) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	enabled := d.wsEnabled
	d.mu.Unlock()
	if !enabled {
		http.Error(w, "websocket disabled", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	d.mu.Lock()
	d.conns[conn] = struct{}{}
	d.mu.Unlock()

	// The channel is push only; reads just process control frames and
	// report the close.
	ctx := conn.CloseRead(r.Context())
	<-ctx.Done()

	d.mu.Lock()
	delete(d.conns, conn)
	d.mu.Unlock()
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (d *Dashboard) handleListTasks(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	tasks := make([]TaskState, 0, len(d.tasks))
	for _, task := range d.tasks {
		tasks = append(tasks, *task)
	}
	d.mu.Unlock()

	writeJSON(w, map[string]any{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// handleTask serves PATCH (cancel/retry actions) and DELETE on one task,
// mutating the stored state and broadcasting the change.
func (d *Dashboard) handleTask(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/tasks/")

	d.mu.Lock()
	idx := -1
	for i, task := range d.tasks {
		if task.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		d.mu.Unlock()
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var body struct {
			Action string `json:"action"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch body.Action {
		case "cancel":
			d.tasks[idx].Status = "cancelled"
		case "retry":
			d.tasks[idx].Status = "pending"
			d.tasks[idx].Progress = 0
		default:
			d.mu.Unlock()
			writeError(w, http.StatusUnprocessableEntity, "Unknown action")
			return
		}
		task := *d.tasks[idx]
		d.mu.Unlock()

		writeJSON(w, task)
		d.Push("task.update", task)

	case http.MethodDelete:
		d.tasks = append(d.tasks[:idx], d.tasks[idx+1:]...)
		d.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)

	default:
		d.mu.Unlock()
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleAccess serves the group access list endpoints:
// GET/POST /api/admin/groups/{id}/access, DELETE .../access/{providerId}
// and POST .../access/reorder.
func (d *Dashboard) handleAccess(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/groups/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[1] != "access" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	groupID := parts[0]

	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		grants := make([]GrantState, 0, len(d.grants))
		for _, g := range d.grants {
			if g.GroupID == groupID {
				grants = append(grants, *g)
			}
		}
		// The real endpoint returns the list in priority order.
		sort.Slice(grants, func(i, j int) bool { return grants[i].SortOrder < grants[j].SortOrder })
		writeJSON(w, grants)

	case len(parts) == 2 && r.Method == http.MethodPost:
		var body struct {
			ProviderConfigID string `json:"providerConfigId"`
			SortOrder        int    `json:"sortOrder"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		for _, g := range d.grants {
			if g.GroupID == groupID && g.ProviderConfigID == body.ProviderConfigID {
				writeError(w, http.StatusConflict, "Provider already granted to this group")
				return
			}
		}
		grant := &GrantState{
			ID:               "l-" + body.ProviderConfigID,
			GroupID:          groupID,
			ProviderConfigID: body.ProviderConfigID,
			SortOrder:        body.SortOrder,
		}
		d.grants = append(d.grants, grant)
		writeJSON(w, *grant)

	case len(parts) == 3 && parts[2] == "reorder" && r.Method == http.MethodPost:
		var body struct {
			ProviderIDs []string `json:"providerIds"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		for order, providerID := range body.ProviderIDs {
			for _, g := range d.grants {
				if g.GroupID == groupID && g.ProviderConfigID == providerID {
					g.SortOrder = order
				}
			}
		}
		w.WriteHeader(http.StatusNoContent)

	case len(parts) == 3 && r.Method == http.MethodDelete:
		providerID := parts[2]
		for i, g := range d.grants {
			if g.GroupID == groupID && g.ProviderConfigID == providerID {
				d.grants = append(d.grants[:i], d.grants[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeError(w, http.StatusNotFound, "Grant not found")

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
