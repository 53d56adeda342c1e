package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
)

type stubAppointmentService struct {
	bookFn         func(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
	getFn          func(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	listFn         func(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error)
}

func (s *stubAppointmentService) Book(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	return s.bookFn(ctx, req)
}

func (s *stubAppointmentService) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.getFn(ctx, id)
}

func (s *stubAppointmentService) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	return s.listFn(ctx, filters)
}

func (s *stubAppointmentService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	return s.updateStatusFn(ctx, id, status)
}

type stubScheduleService struct {
	availableFn func(ctx context.Context, days int) ([]*model.DateAvailability, error)
}

func (s *stubScheduleService) GenerateSlots(cfg *model.ScheduleConfig) []string {
	return nil
}

func (s *stubScheduleService) AvailableDates(ctx context.Context, days int) ([]*model.DateAvailability, error) {
	return s.availableFn(ctx, days)
}

func setupRouter(apptSvc *stubAppointmentService, schedSvc *stubScheduleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(apptSvc, schedSvc)
	h.RegisterPublicRoutes(r)
	h.RegisterAdminRoutes(r)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestCreateAppointment(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubAppointmentService{
			bookFn: func(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
				return &model.Appointment{
					ID:     uuid.New(),
					Time:   req.Time,
					Status: model.AppointmentStatusPending,
				}, nil
			},
		}
		r := setupRouter(svc, &stubScheduleService{})

		w, env := doJSON(t, r, http.MethodPost, "/appointments", map[string]string{
			"date": "2026-03-11", "time": "09:00",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)

		var apt model.Appointment
		require.NoError(t, json.Unmarshal(env.Data, &apt))
		assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	})

	t.Run("validation error", func(t *testing.T) {
		svc := &stubAppointmentService{
			bookFn: func(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
				return nil, errors.Validation("invalid appointment request",
					errors.FieldError{Field: "clientPhone", Message: "must contain exactly 10 digits"})
			},
		}
		r := setupRouter(svc, &stubScheduleService{})

		w, env := doJSON(t, r, http.MethodPost, "/appointments", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "clientPhone", env.Error.Details[0].Field)
	})

	t.Run("slot conflict", func(t *testing.T) {
		svc := &stubAppointmentService{
			bookFn: func(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
				return nil, errors.Conflict("the selected time slot is no longer available")
			},
		}
		r := setupRouter(svc, &stubScheduleService{})

		w, env := doJSON(t, r, http.MethodPost, "/appointments", map[string]string{})
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Message, "no longer available")
	})

	t.Run("malformed body", func(t *testing.T) {
		r := setupRouter(&stubAppointmentService{}, &stubScheduleService{})

		req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAvailableDates(t *testing.T) {
	t.Run("returns dates with free hours", func(t *testing.T) {
		var gotDays int
		sched := &stubScheduleService{
			availableFn: func(ctx context.Context, days int) ([]*model.DateAvailability, error) {
				gotDays = days
				return []*model.DateAvailability{
					{Date: "2026-03-11", AvailableHours: []string{"09:00", "10:00"}},
				}, nil
			},
		}
		r := setupRouter(&stubAppointmentService{}, sched)

		w, env := doJSON(t, r, http.MethodGet, "/appointments/available-dates?days=14", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 14, gotDays)

		var dates []model.DateAvailability
		require.NoError(t, json.Unmarshal(env.Data, &dates))
		require.Len(t, dates, 1)
		assert.Equal(t, []string{"09:00", "10:00"}, dates[0].AvailableHours)
	})

	t.Run("invalid days parameter", func(t *testing.T) {
		r := setupRouter(&stubAppointmentService{}, &stubScheduleService{})

		w, _ := doJSON(t, r, http.MethodGet, "/appointments/available-dates?days=soon", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateAppointmentStatus(t *testing.T) {
	id := uuid.New()

	t.Run("updates", func(t *testing.T) {
		svc := &stubAppointmentService{
			updateStatusFn: func(ctx context.Context, gotID uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
				assert.Equal(t, id, gotID)
				return &model.Appointment{ID: gotID, Status: status}, nil
			},
		}
		r := setupRouter(svc, &stubScheduleService{})

		w, env := doJSON(t, r, http.MethodPatch, "/appointments/"+id.String()+"/status",
			model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusConfirmed})
		assert.Equal(t, http.StatusOK, w.Code)

		var apt model.Appointment
		require.NoError(t, json.Unmarshal(env.Data, &apt))
		assert.Equal(t, model.AppointmentStatusConfirmed, apt.Status)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &stubAppointmentService{
			updateStatusFn: func(ctx context.Context, gotID uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
				return nil, errors.NotFound("appointment")
			},
		}
		r := setupRouter(svc, &stubScheduleService{})

		w, _ := doJSON(t, r, http.MethodPatch, "/appointments/"+uuid.New().String()+"/status",
			model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusConfirmed})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		r := setupRouter(&stubAppointmentService{}, &stubScheduleService{})

		w, _ := doJSON(t, r, http.MethodPatch, "/appointments/not-a-uuid/status",
			model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusConfirmed})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid transition", func(t *testing.T) {
		svc := &stubAppointmentService{
			updateStatusFn: func(ctx context.Context, gotID uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
				return nil, errors.Conflict("cannot change status from COMPLETED to PENDING")
			},
		}
		r := setupRouter(svc, &stubScheduleService{})

		w, _ := doJSON(t, r, http.MethodPatch, "/appointments/"+id.String()+"/status",
			model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusPending})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestListAppointments(t *testing.T) {
	svc := &stubAppointmentService{
		listFn: func(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
			assert.Equal(t, model.AppointmentStatusPending, filters.Status)
			assert.Equal(t, 2, filters.Page)
			return []*model.Appointment{{ID: uuid.New()}}, 21, nil
		},
	}
	r := setupRouter(svc, &stubScheduleService{})

	w, env := doJSON(t, r, http.MethodGet, "/appointments?status=PENDING&page=2&limit=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items      []model.Appointment `json:"items"`
		Pagination struct {
			Page  int   `json:"page"`
			Total int64 `json:"total"`
			Pages int64 `json:"pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Len(t, body.Items, 1)
	assert.Equal(t, int64(21), body.Pagination.Total)
	assert.Equal(t, int64(3), body.Pagination.Pages)
}
