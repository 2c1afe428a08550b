package sandbox

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/api"
	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/logging"
)

const minPasswordLength = 8

// validationIssue is one entry of a FastAPI style validation detail list
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// fail aborts with a {"detail": ...} body
func fail(c *gin.Context, status int, detail any) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// failFields reports field errors as a 422 validation list under loc prefix
func failFields(c *gin.Context, errs automation.FieldErrors, prefix ...string) {
	issues := make([]validationIssue, 0, len(errs))
	for _, name := range errs.Fields() {
		loc := append(append([]string{"body"}, prefix...), name)
		issues = append(issues, validationIssue{Loc: loc, Msg: errs[name], Type: "value_error"})
	}
	fail(c, http.StatusUnprocessableEntity, issues)
}

func failBind(c *gin.Context, err error) {
	fail(c, http.StatusUnprocessableEntity, []validationIssue{{
		Loc:  []string{"body"},
		Msg:  err.Error(),
		Type: "value_error.jsondecode",
	}})
}

// handlers serves the backend API from a Store
type handlers struct {
	store *Store
	hub   *Hub
}

func (h *handlers) design(c *gin.Context) {
	var req automation.DesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	if strings.TrimSpace(req.TaskDescription) == "" {
		failFields(c, automation.FieldErrors{"task_description": "Task description is required"})
		return
	}
	if req.AutomationType != "" && !req.AutomationType.Valid() {
		failFields(c, automation.FieldErrors{"automation_type": fmt.Sprintf("unknown automation type %q", req.AutomationType)})
		return
	}
	c.JSON(http.StatusOK, Design(req))
}

func (h *handlers) createAutomation(c *gin.Context) {
	var req automation.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	if !req.Type.Valid() {
		failFields(c, automation.FieldErrors{"type": fmt.Sprintf("unknown automation type %q", req.Type)})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		req.Name = automation.DeriveName(req.Description)
	}

	cfg := configStrings(req.Config)
	if errs := automation.ValidateConfig(req.Type, cfg); errs != nil {
		failFields(c, errs, "config")
		return
	}
	if req.Schedule == "" {
		req.Schedule = automation.ScheduleFor(0)
	}
	sched, err := automation.ParseSchedule(req.Schedule)
	if err != nil {
		failFields(c, automation.FieldErrors{"schedule": err.Error()})
		return
	}
	req.Config = automation.Config(cfg).Payload()

	code, err := Script(req)
	if err != nil {
		logging.Error("Script generation failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to generate code")
		return
	}

	a := automation.Automation{
		Name:         req.Name,
		Description:  req.Description,
		Type:         req.Type,
		Status:       automation.StatusActive,
		Config:       req.Config,
		WorkflowCode: code,
		NextRun:      &automation.Timestamp{Time: sched.Next(time.Now()).UTC()},
	}

	c.JSON(http.StatusOK, h.store.AddAutomation(a))
}

func (h *handlers) listAutomations(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Automations())
}

func (h *handlers) getAutomation(c *gin.Context) {
	a, err := h.store.Automation(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Automation not found")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *handlers) deleteAutomation(c *gin.Context) {
	if err := h.store.DeleteAutomation(c.Param("id")); err != nil {
		fail(c, http.StatusNotFound, "Automation not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Automation deleted"})
}

func (h *handlers) createHosted(c *gin.Context) {
	var req automation.HostedCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c, err)
		return
	}
	req = req.Normalize()
	if errs := automation.ValidateHostedRequest(req); errs != nil {
		failFields(c, errs)
		return
	}

	rec, err := h.store.AddHosted(req)
	if errors.Is(err, ErrLimitReached) {
		fail(c, http.StatusBadRequest, fmt.Sprintf(
			"Free tier limit reached (%d automations). Delete one to create another.", h.store.Limit()))
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.hub.Broadcast(api.Event{Event: api.EventCreated, ID: rec.ID})
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) listHosted(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Hosted())
}

func (h *handlers) toggleHosted(c *gin.Context) {
	id, ok := hostedID(c)
	if !ok {
		return
	}
	rec, err := h.store.ToggleHosted(id)
	if err != nil {
		fail(c, http.StatusNotFound, "Automation not found")
		return
	}
	h.hub.Broadcast(api.Event{Event: api.EventToggled, ID: id})
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) deleteHosted(c *gin.Context) {
	id, ok := hostedID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteHosted(id); err != nil {
		fail(c, http.StatusNotFound, "Automation not found")
		return
	}
	h.hub.Broadcast(api.Event{Event: api.EventDeleted, ID: id})
	c.JSON(http.StatusOK, gin.H{"message": "Automation deleted"})
}

func (h *handlers) signup(c *gin.Context) {
	var creds automation.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		failBind(c, err)
		return
	}

	errs := automation.FieldErrors{}
	if err := automation.ValidateEmail(creds.Email); err != nil {
		errs[automation.FieldEmail] = err.Error()
	}
	if len(creds.Password) < minPasswordLength {
		errs["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
	if len(errs) > 0 {
		failFields(c, errs)
		return
	}

	session, err := h.store.Signup(creds)
	switch {
	case errors.Is(err, ErrEmailTaken):
		fail(c, http.StatusBadRequest, "Email already registered")
	case err != nil:
		fail(c, http.StatusInternalServerError, err.Error())
	default:
		c.JSON(http.StatusOK, session)
	}
}

func (h *handlers) login(c *gin.Context) {
	var creds automation.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		failBind(c, err)
		return
	}
	session, err := h.store.Login(creds)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handlers) logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		h.store.Logout(token)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// requireSession rejects requests without a live bearer token
func (h *handlers) requireSession(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		fail(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if _, ok := h.store.SessionEmail(token); !ok {
		fail(c, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	c.Next()
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func hostedID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		failFields(c, automation.FieldErrors{"id": "value is not a valid integer"})
		return 0, false
	}
	return id, true
}

// configStrings flattens a JSON config object into form values
func configStrings(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// requestLogger logs each request with the caller's X-Request-ID
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		if id := c.GetHeader("X-Request-ID"); id != "" {
			c.Header("X-Request-ID", id)
		}
		c.Next()
		logging.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
			zap.String("remote_addr", c.ClientIP()),
		)
	}
}

// NewRouter builds the gin engine serving the backend API from store and
// broadcasting hosted changes on hub. With requireAuth set every automation
// endpoint needs a bearer token from signup or login.
func NewRouter(store *Store, hub *Hub, requireAuth bool) *gin.Engine {
	h := &handlers{store: store, hub: hub}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Not Found")
	})
	router.NoMethod(func(c *gin.Context) {
		fail(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	router.HandleMethodNotAllowed = true

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "autobuilder-sandbox"})
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", h.signup)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
	}

	apiGroup := router.Group("/api")
	if requireAuth {
		apiGroup.Use(h.requireSession)
	}
	{
		apiGroup.POST("/workflows/design", h.design)

		apiGroup.POST("/automations/create", h.createAutomation)
		apiGroup.GET("/automations/list", h.listAutomations)
		apiGroup.GET("/automations/:id", h.getAutomation)
		apiGroup.DELETE("/automations/:id", h.deleteAutomation)

		apiGroup.POST("/hosted-automations/create", h.createHosted)
		apiGroup.GET("/hosted-automations/list", h.listHosted)
		apiGroup.PUT("/hosted-automations/:id/toggle", h.toggleHosted)
		apiGroup.DELETE("/hosted-automations/:id", h.deleteHosted)
	}

	if requireAuth {
		router.GET(api.WatchPath, h.requireSession, gin.WrapH(hub))
	} else {
		router.GET(api.WatchPath, gin.WrapH(hub))
	}

	return router
}
