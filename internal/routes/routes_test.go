package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/dealer-crm/internal/audit"
	"github.com/BruksfildServices01/dealer-crm/internal/auth"
	"github.com/BruksfildServices01/dealer-crm/internal/config"
	infraRepo "github.com/BruksfildServices01/dealer-crm/internal/infra/repository"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/testutil"
)

// syncAudit writes events inline so tests can read them back immediately.
type syncAudit struct {
	logger *audit.Logger
}

func (s syncAudit) Dispatch(ev audit.Event) {
	_ = s.logger.Log(ev)
}

type env struct {
	r  *gin.Engine
	db *gorm.DB
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	cfg := &config.Config{
		SessionTTL:        7 * 24 * time.Hour,
		SessionCookieName: "session_token",
		JWTSecret:         "test-secret",
		Timezone:          "UTC",
		BookingPrefix:     "#SILB",
		PrimaryAdmin:      "admin",
		AllowedOrigins:    []string{"*"},
	}

	r := gin.New()
	require.NoError(t, RegisterRoutes(r, db, cfg, Infra{
		Sessions:   infraRepo.NewSessionGormStore(db),
		Audit:      syncAudit{logger: audit.New(db, testutil.Clock)},
		Clock:      testutil.Clock,
		IDs:        &testutil.SeqIDs{},
		BcryptCost: bcrypt.MinCost,
	}))
	return &env{r: r, db: db}
}

func (e *env) user(t *testing.T, username, role string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)

	u := testutil.CreateUser(t, e.db, "user_"+username, username, role)
	u.Username = username
	u.PasswordHash = hash
	require.NoError(t, e.db.Save(u).Error)
	return u
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) login(t *testing.T, username string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type listBody[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func bookingBody(date string) gin.H {
	return gin.H{
		"branch":           "Main",
		"appointment_date": date,
		"appointment_time": "10:30",
		"source":           "Walk-in",
		"service_type":     "PMS",
		"customer_name":    "Ravi",
		"customer_phone":   "98765 43210",
		"vehicle_reg_no":   "ka 01 ab 1234",
	}
}

// ======================================================
// OPERATIONS
// ======================================================

func TestHealth(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodGet, "/health", "", nil)

	w := e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dealer_crm_http_requests_total")
}

// ======================================================
// AUTH
// ======================================================

func TestLoginSetsCookieAndAuthenticates(t *testing.T) {
	e := newEnv(t)
	e.user(t, "asha", "CRE")

	w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "asha", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	e.r.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)

	u := decode[models.User](t, me)
	assert.Equal(t, "asha", u.Username)
	assert.NotContains(t, me.Body.String(), "password_hash")
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newEnv(t)
	e.user(t, "asha", "CRE")
	token := e.login(t, "asha")

	w := e.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginErrors(t *testing.T) {
	e := newEnv(t)
	locked := e.user(t, "frozen", "CRE")
	locked.IsLocked = true
	require.NoError(t, e.db.Save(locked).Error)

	w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "frozen", "password": "secret"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "frozen", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "frozen"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSecuredRoutesRequireSession(t *testing.T) {
	e := newEnv(t)

	for _, path := range []string{"/api/appointments", "/api/tasks", "/api/dashboard/stats", "/api/settings"} {
		w := e.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

// ======================================================
// USERS
// ======================================================

func TestUserManagementIsCRMOnly(t *testing.T) {
	e := newEnv(t)
	e.user(t, "admin", "CRM")
	e.user(t, "asha", "CRE")

	creToken := e.login(t, "asha")
	w := e.do(t, http.MethodGet, "/api/users", creToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodGet, "/api/users/cres", creToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[listBody[models.User]](t, w).Total)

	adminToken := e.login(t, "admin")
	w = e.do(t, http.MethodPost, "/api/users", adminToken, gin.H{
		"username": "front", "password": "pw", "name": "Front Desk", "role": "Receptionist",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.User](t, w)

	w = e.do(t, http.MethodPost, "/api/users/"+created.UserID+"/toggle-lock", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"`+created.UserID+`","is_locked":true}`, w.Body.String())

	w = e.do(t, http.MethodDelete, "/api/users/"+created.UserID, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodDelete, "/api/users/user_admin", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var logs []models.AuditLog
	require.NoError(t, e.db.Where("action = ?", audit.ActionUserCreate).Find(&logs).Error)
	assert.Len(t, logs, 1)
}

// ======================================================
// APPOINTMENTS
// ======================================================

func TestAppointmentLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)
	e.user(t, "asha", "CRE")
	token := e.login(t, "asha")

	w := e.do(t, http.MethodPost, "/api/appointments", token, bookingBody(testutil.Today))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ap := decode[models.Appointment](t, w)
	assert.Equal(t, "#SILB0001", ap.BookingID)
	assert.Equal(t, "9876543210", ap.CustomerPhone)
	assert.Equal(t, "user_asha", ap.AssignedCREUser)

	w = e.do(t, http.MethodGet, "/api/appointments?view=day&date="+testutil.Today, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[listBody[models.Appointment]](t, w).Total)

	w = e.do(t, http.MethodGet, "/api/appointments/"+ap.AppointmentID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPut, "/api/appointments/"+ap.AppointmentID, token, gin.H{"n_minus_1_confirmation_status": "Confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Confirmed", decode[models.Appointment](t, w).N1Status)

	w = e.do(t, http.MethodPut, "/api/appointments/"+ap.AppointmentID, token, gin.H{"appointment_day_outcome": "Reported"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodGet, "/api/appointments/"+ap.AppointmentID+"/activity", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[listBody[models.ActivityLog]](t, w)
	require.Equal(t, 2, logs.Total)
	assert.Equal(t, "Updated n_minus_1_confirmation_status", logs.Data[0].Action)

	w = e.do(t, http.MethodGet, "/api/appointments/appt_missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckDuplicatesNormalizesQuery(t *testing.T) {
	e := newEnv(t)
	e.user(t, "asha", "CRE")
	token := e.login(t, "asha")

	w := e.do(t, http.MethodPost, "/api/appointments", token, bookingBody(testutil.Tomorrow))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/appointments/duplicates/check?vehicle=KA01AB1234", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[listBody[models.Appointment]](t, w).Total)

	w = e.do(t, http.MethodGet, "/api/appointments/duplicates/check?phone=11111111", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[listBody[models.Appointment]](t, w).Total)
}

func TestInvalidViewIsBadRequest(t *testing.T) {
	e := newEnv(t)
	e.user(t, "asha", "CRE")
	token := e.login(t, "asha")

	w := e.do(t, http.MethodGet, "/api/appointments?view=week", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ======================================================
// TASKS / DASHBOARD
// ======================================================

func TestTomorrowBookingCreatesReminderTask(t *testing.T) {
	e := newEnv(t)
	e.user(t, "asha", "CRE")
	token := e.login(t, "asha")

	w := e.do(t, http.MethodPost, "/api/appointments", token, bookingBody(testutil.Tomorrow))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	type taskView struct {
		models.Task
		AppointmentInfo *models.AppointmentInfo `json:"appointment_info"`
	}
	tasks := decode[listBody[taskView]](t, w)
	require.Equal(t, 1, tasks.Total)
	require.NotNil(t, tasks.Data[0].AppointmentInfo)
	assert.Equal(t, "Ravi", tasks.Data[0].AppointmentInfo.CustomerName)

	w = e.do(t, http.MethodPut, "/api/tasks/"+tasks.Data[0].TaskID+"?status=pending", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, "/api/tasks/"+tasks.Data[0].TaskID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode[models.Task](t, w).Status)

	w = e.do(t, http.MethodGet, "/api/tasks", token, nil)
	assert.Equal(t, 0, decode[listBody[taskView]](t, w).Total)
}

func TestDashboardStats(t *testing.T) {
	e := newEnv(t)
	e.user(t, "asha", "CRE")
	token := e.login(t, "asha")

	w := e.do(t, http.MethodPost, "/api/appointments", token, bookingBody(testutil.Today))
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		TodayTotal int64            `json:"today_total"`
		ByBranch   map[string]int64 `json:"by_branch"`
		ByCRE      map[string]int64 `json:"by_cre"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TodayTotal)
	assert.Equal(t, map[string]int64{"Main": 1}, stats.ByBranch)
	assert.Equal(t, map[string]int64{"asha": 1}, stats.ByCRE)
}

// ======================================================
// SETTINGS / AUDIT
// ======================================================

func TestSettingsAndAuditLogs(t *testing.T) {
	e := newEnv(t)
	e.user(t, "admin", "CRM")
	e.user(t, "asha", "CRE")
	adminToken := e.login(t, "admin")
	creToken := e.login(t, "asha")

	w := e.do(t, http.MethodPut, "/api/settings", creToken, gin.H{"sources": []string{"Web"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodPut, "/api/settings", adminToken, gin.H{"sources": []string{"Web", "Phone"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"Web", "Phone"}, decode[models.Settings](t, w).Sources)

	w = e.do(t, http.MethodPut, "/api/user-preferences/appointments", creToken, gin.H{"hidden_columns": []string{"model"}})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodGet, "/api/user-preferences/appointments", creToken, nil)
	assert.Equal(t, []string{"model"}, decode[models.UserPreference](t, w).HiddenColumns)

	w = e.do(t, http.MethodGet, "/api/audit-logs", creToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodGet, "/api/audit-logs?action="+audit.ActionSettingsUpdate, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64             `json:"total"`
		Logs  []models.AuditLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)

	w = e.do(t, http.MethodGet, "/api/audit-logs?from=03-10-2026", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
