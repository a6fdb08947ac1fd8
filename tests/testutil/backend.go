// Package testutil provides test doubles shared across packages: an
// in-memory fake of the sprint-manager REST backend and a throwaway
// client-state store.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/nhle/sprintboard/internal/model"
)

// SignupMode selects which of the backend's known signup response shapes
// the fake emits.
type SignupMode int

const (
	// SignupDirect returns the created user object as the body.
	SignupDirect SignupMode = iota
	// SignupWrapped wraps the user under a "User created successfully" key.
	SignupWrapped
	// SignupErrorArray returns a single-element array holding an
	// "already registered" error string with status 200.
	SignupErrorArray
	// SignupErrorField returns {"error": "..."} with status 200.
	SignupErrorField
	// SignupReject returns 400 with a JSON detail field.
	SignupReject
)

// Backend is an in-memory fake of the REST backend, served over httptest.
// All mutators and accessors are safe for concurrent use.
type Backend struct {
	Server *httptest.Server

	mu         sync.Mutex
	users      map[int]model.User
	passwords  map[string]string // email -> password
	projects   map[int]*model.Project
	sprints    map[int]*model.Sprint
	tasks      map[int]*model.Task
	nextID     int
	requests   []string
	signupMode SignupMode
	loginToken string
	hook       func(r *http.Request)
}

// NewBackend starts a fake backend and shuts it down with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		users:     make(map[int]model.User),
		passwords: make(map[string]string),
		projects:  make(map[int]*model.Project),
		sprints:   make(map[int]*model.Sprint),
		tasks:     make(map[int]*model.Task),
		nextID:    1000,
	}

	b.Server = httptest.NewServer(b.handler())
	t.Cleanup(b.Server.Close)

	return b
}

// URL returns the backend's base URL.
func (b *Backend) URL() string {
	return b.Server.URL
}

// SetHook installs a function invoked before every request is handled.
// Tests use it to stall chosen requests. A nil hook disables it.
func (b *Backend) SetHook(hook func(r *http.Request)) {
	b.mu.Lock()
	b.hook = hook
	b.mu.Unlock()
}

// SetSignupMode selects the signup response shape.
func (b *Backend) SetSignupMode(mode SignupMode) {
	b.mu.Lock()
	b.signupMode = mode
	b.mu.Unlock()
}

// SetLoginToken makes successful logins include an access_token field.
func (b *Backend) SetLoginToken(token string) {
	b.mu.Lock()
	b.loginToken = token
	b.mu.Unlock()
}

// SeedUser registers a user with a password for login checks.
func (b *Backend) SeedUser(u model.User, password string) {
	b.mu.Lock()
	b.users[u.ID] = u
	b.passwords[u.Email] = password
	b.mu.Unlock()
}

// SeedProject stores a project.
func (b *Backend) SeedProject(p model.Project) {
	b.mu.Lock()
	cp := p
	b.projects[p.ID] = &cp
	b.mu.Unlock()
}

// SeedSprint stores a sprint.
func (b *Backend) SeedSprint(s model.Sprint) {
	b.mu.Lock()
	cp := s
	b.sprints[s.ID] = &cp
	b.mu.Unlock()
}

// SeedTask stores a task.
func (b *Backend) SeedTask(t model.Task) {
	b.mu.Lock()
	cp := t
	b.tasks[t.ID] = &cp
	b.mu.Unlock()
}

// Task returns the stored task by id.
func (b *Backend) Task(id int) (model.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return *t, true
}

// Sprint returns the stored sprint by id.
func (b *Backend) Sprint(id int) (model.Sprint, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sprints[id]
	if !ok {
		return model.Sprint{}, false
	}
	return *s, true
}

// Requests returns the request log as "METHOD path" entries (query
// string included when present).
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.requests))
	copy(out, b.requests)
	return out
}

// RequestCount counts logged requests whose entry contains the substring.
func (b *Backend) RequestCount(substr string) int {
	n := 0
	for _, r := range b.Requests() {
		if strings.Contains(r, substr) {
			n++
		}
	}
	return n
}

// ResetRequests clears the request log.
func (b *Backend) ResetRequests() {
	b.mu.Lock()
	b.requests = nil
	b.mu.Unlock()
}

func (b *Backend) allocID() int {
	b.nextID++
	return b.nextID
}

func (b *Backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users/valid", b.handleLogin)
	mux.HandleFunc("POST /users/{$}", b.handleSignup)
	mux.HandleFunc("GET /users/{id}", b.handleGetUser)
	mux.HandleFunc("PATCH /users/{id}", b.handlePatchUser)
	mux.HandleFunc("GET /users/organisation/{org}", b.handleOrganisationUsers)
	mux.HandleFunc("GET /users/project/{id}", b.handleProjectMembers)
	mux.HandleFunc("GET /users/assignproject/{org}", b.handleAssignRoster)
	mux.HandleFunc("GET /users/unassignproject/{org}", b.handleUnassignRoster)
	mux.HandleFunc("GET /projects/user/{id}", b.handleProjectsForUser)
	mux.HandleFunc("POST /projects/{$}", b.handleCreateProject)
	mux.HandleFunc("GET /projects/{id}", b.handleGetProject)
	mux.HandleFunc("POST /projects/add-users/{id}", b.handleAddUsers)
	mux.HandleFunc("POST /projects/remove-users/{id}", b.handleRemoveUsers)
	mux.HandleFunc("GET /sprints/{projectID}", b.handleSprints)
	mux.HandleFunc("POST /sprints/{$}", b.handleCreateSprint)
	mux.HandleFunc("PATCH /sprints/{id}", b.handleEndSprint)
	mux.HandleFunc("GET /tasks/all", b.handleTasksAll)
	mux.HandleFunc("GET /tasks/unassigned", b.handleTasksUnassigned)
	mux.HandleFunc("GET /tasks/search/ByTitle", b.handleTaskSearch)
	mux.HandleFunc("POST /tasks", b.handleCreateTask)
	mux.HandleFunc("GET /tasks/{id}", b.handleGetTask)
	mux.HandleFunc("PATCH /tasks/{id}", b.handlePatchTask)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			entry += "?" + r.URL.RawQuery
		}
		b.mu.Lock()
		b.requests = append(b.requests, entry)
		hook := b.hook
		b.mu.Unlock()

		if hook != nil {
			hook(r)
		}

		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func pathID(r *http.Request, name string) int {
	id, _ := strconv.Atoi(r.PathValue(name))
	return id
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed credentials")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	password, ok := b.passwords[creds.Email]
	if !ok || password != creds.Password {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	for _, u := range b.users {
		if u.Email == creds.Email {
			body := map[string]interface{}{
				"id":           u.ID,
				"email":        u.Email,
				"full_name":    u.FullName,
				"organisation": u.Organisation,
			}
			if b.loginToken != "" {
				body["access_token"] = b.loginToken
			}
			writeJSON(w, http.StatusOK, body)
			return
		}
	}

	writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
}

func (b *Backend) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed credentials")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.signupMode {
	case SignupErrorArray:
		writeJSON(w, http.StatusOK, []string{
			fmt.Sprintf("User with email %s already registered", creds.Email),
		})
		return
	case SignupErrorField:
		writeJSON(w, http.StatusOK, map[string]string{
			"error": "Email already registered",
		})
		return
	case SignupReject:
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	user := model.User{ID: b.allocID(), Email: creds.Email}
	b.users[user.ID] = user
	b.passwords[creds.Email] = creds.Password

	if b.signupMode == SignupWrapped {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"User created successfully": user,
		})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (b *Backend) handleGetUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	var update struct {
		FullName     string  `json:"full_name"`
		Email        string  `json:"email"`
		Mobile       *string `json:"mobile"`
		Role         *string `json:"role"`
		Location     *string `json:"location"`
		Organisation *string `json:"organisation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed profile")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "user not found")
		return
	}

	u.FullName = update.FullName
	u.Email = update.Email
	u.Mobile = deref(update.Mobile)
	u.Role = deref(update.Role)
	u.Location = deref(update.Location)
	u.Organisation = deref(update.Organisation)
	b.users[u.ID] = u
	writeJSON(w, http.StatusOK, u)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (b *Backend) handleOrganisationUsers(w http.ResponseWriter, r *http.Request) {
	org := r.PathValue("org")

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []model.User{}
	for _, u := range b.users {
		if u.Organisation == org {
			out = append(out, u)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleProjectMembers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.projects[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p.Users)
}

func (b *Backend) handleAssignRoster(w http.ResponseWriter, r *http.Request) {
	b.roster(w, r, false)
}

func (b *Backend) handleUnassignRoster(w http.ResponseWriter, r *http.Request) {
	b.roster(w, r, true)
}

// roster returns organisation users filtered by project membership:
// members when wantMembers, non-members otherwise.
func (b *Backend) roster(w http.ResponseWriter, r *http.Request, wantMembers bool) {
	org := r.PathValue("org")
	projectID, _ := strconv.Atoi(r.URL.Query().Get("project_id"))

	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.projects[projectID]
	out := []model.User{}
	for _, u := range b.users {
		if u.Organisation != org {
			continue
		}
		isMember := p != nil && p.HasMember(u.ID)
		if isMember == wantMembers {
			out = append(out, u)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleProjectsForUser(w http.ResponseWriter, r *http.Request) {
	userID := pathID(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []model.Project{}
	for _, p := range b.projects {
		if p.HasMember(userID) || p.ManagerID == userID {
			out = append(out, *p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title     string `json:"title"`
		Users     []int  `json:"users"`
		ManagerID int    `json:"manager_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed project")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := &model.Project{
		ID:        b.allocID(),
		Title:     body.Title,
		ManagerID: body.ManagerID,
	}
	for _, id := range body.Users {
		if u, ok := b.users[id]; ok {
			p.Users = append(p.Users, u)
		} else {
			p.Users = append(p.Users, model.User{ID: id})
		}
	}
	b.projects[p.ID] = p
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleGetProject(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.projects[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleAddUsers(w http.ResponseWriter, r *http.Request) {
	b.mutateMembers(w, r, true)
}

func (b *Backend) handleRemoveUsers(w http.ResponseWriter, r *http.Request) {
	b.mutateMembers(w, r, false)
}

func (b *Backend) mutateMembers(w http.ResponseWriter, r *http.Request, add bool) {
	var body struct {
		UserIDs []int `json:"user_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed member list")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.projects[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "project not found")
		return
	}

	for _, id := range body.UserIDs {
		if add {
			if !p.HasMember(id) {
				u, ok := b.users[id]
				if !ok {
					u = model.User{ID: id}
				}
				p.Users = append(p.Users, u)
			}
		} else {
			kept := p.Users[:0]
			for _, u := range p.Users {
				if u.ID != id {
					kept = append(kept, u)
				}
			}
			p.Users = kept
		}
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleSprints(w http.ResponseWriter, r *http.Request) {
	projectID := pathID(r, "projectID")

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []model.Sprint{}
	for _, s := range b.sprints {
		if s.ProjectID == projectID {
			out = append(out, *s)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateSprint(w http.ResponseWriter, r *http.Request) {
	var body model.Sprint
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed sprint")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	body.ID = b.allocID()
	b.sprints[body.ID] = &body
	writeJSON(w, http.StatusOK, body)
}

func (b *Backend) handleEndSprint(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sprints[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "sprint not found")
		return
	}
	s.Status = false
	writeJSON(w, http.StatusOK, s)
}

// matchFilters applies the categorical query parameters to a task.
func matchFilters(t *model.Task, q map[string][]string) bool {
	if v, ok := q["work_type"]; ok && string(t.WorkType) != v[0] {
		return false
	}
	if v, ok := q["work_flow"]; ok && string(t.WorkFlow) != v[0] {
		return false
	}
	if v, ok := q["priority"]; ok && string(t.Priority) != v[0] {
		return false
	}
	return true
}

func (b *Backend) handleTasksAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projectID, _ := strconv.Atoi(q.Get("project_ids"))
	sprintID, _ := strconv.Atoi(q.Get("sprint_ids"))
	userID, _ := strconv.Atoi(q.Get("user_ids"))

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []model.Task{}
	for _, t := range b.tasks {
		if t.ProjectID != projectID {
			continue
		}
		if sprintID != 0 && !t.InSprint(sprintID) {
			continue
		}
		if userID != 0 && (t.UserID == nil || *t.UserID != userID) {
			continue
		}
		if !matchFilters(t, q) {
			continue
		}
		out = append(out, *t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleTasksUnassigned(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projectID, _ := strconv.Atoi(q.Get("project_ids"))
	sprintID, _ := strconv.Atoi(q.Get("sprint_ids"))
	userID, _ := strconv.Atoi(q.Get("user_ids"))
	backlog := q.Get("backlog") == "true"

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []model.Task{}
	for _, t := range b.tasks {
		if t.ProjectID != projectID {
			continue
		}
		switch {
		case sprintID != 0:
			// Unassigned tasks of one sprint.
			if !t.InSprint(sprintID) || t.UserID != nil {
				continue
			}
		case backlog:
			// Pure backlog: no sprint, no assignee.
			if t.SprintID != nil || t.UserID != nil {
				continue
			}
		case userID != 0:
			// One user's sprint-less tasks.
			if t.SprintID != nil || t.UserID == nil || *t.UserID != userID {
				continue
			}
		default:
			if t.SprintID != nil {
				continue
			}
		}
		if !matchFilters(t, q) {
			continue
		}
		out = append(out, *t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleTaskSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projectID, _ := strconv.Atoi(q.Get("project_id"))
	needle := strings.ToLower(q.Get("q"))

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []model.Task{}
	for _, t := range b.tasks {
		if t.ProjectID != projectID {
			continue
		}
		if strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, *t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var body model.Task
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed task")
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	body.ID = b.allocID()
	b.tasks[body.ID] = &body
	writeJSON(w, http.StatusOK, body)
}

func (b *Backend) handleGetTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tasks[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")

	var record model.Task
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed task")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.tasks[id]; !ok {
		writeDetail(w, http.StatusNotFound, "task not found")
		return
	}
	record.ID = id
	b.tasks[id] = &record
	writeJSON(w, http.StatusOK, record)
}
