package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vbgateway/internal/audit"
	"vbgateway/internal/engine"
	"vbgateway/internal/order"
)

type engineMock struct{ mock.Mock }

func (m *engineMock) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *engineMock) OnNotify(ctx context.Context, fields url.Values) error {
	args := m.Called(ctx, fields)
	return args.Error(0)
}

func (m *engineMock) OnReturn(ctx context.Context, ord *order.Order, fields url.Values) engine.Outcome {
	args := m.Called(ctx, ord, fields)
	return args.Get(0).(engine.Outcome)
}

type auditMock struct{ mock.Mock }

func (m *auditMock) Record(ctx context.Context, gatewayID, channel string, fields url.Values) {
	m.Called(ctx, gatewayID, channel, fields)
}

func postForm(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newNotifyRouter(h *Notify) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/payment/notify/:gateway", h.Handler)
	return r
}

func TestNotify_Handler(t *testing.T) {
	fields := url.Values{"TRTYPE": {"0"}, "ORDER": {"O1"}}

	t.Run("forwards fields to the owning engine", func(t *testing.T) {
		t.Parallel()
		eng := new(engineMock)
		eng.On("ID").Return("vb_main")
		eng.On("OnNotify", mock.Anything, fields).Return(nil)
		rec := new(auditMock)
		rec.On("Record", mock.Anything, "vb_main", audit.ChannelNotify, fields)

		router := newNotifyRouter(NewNotify(NewRegistry(nil, eng), rec))
		res := postForm(router, "/payment/notify/vb_main", fields.Encode())

		require.Equal(t, http.StatusOK, res.Code)
		require.Empty(t, res.Body.String())
		eng.AssertExpectations(t)
		rec.AssertExpectations(t)
	})

	t.Run("unknown gateway still answers empty 200", func(t *testing.T) {
		t.Parallel()
		eng := new(engineMock)
		eng.On("ID").Return("vb_main")
		rec := new(auditMock)
		rec.On("Record", mock.Anything, "vb_other", audit.ChannelNotify, fields)

		router := newNotifyRouter(NewNotify(NewRegistry(nil, eng), rec))
		res := postForm(router, "/payment/notify/vb_other", fields.Encode())

		require.Equal(t, http.StatusOK, res.Code)
		require.Empty(t, res.Body.String())
		eng.AssertNotCalled(t, "OnNotify", mock.Anything, mock.Anything)
	})

	t.Run("engine error never reaches the bank", func(t *testing.T) {
		t.Parallel()
		eng := new(engineMock)
		eng.On("ID").Return("vb_main")
		eng.On("OnNotify", mock.Anything, fields).Return(errors.New("boom"))

		router := newNotifyRouter(NewNotify(NewRegistry(nil, eng), nil))
		res := postForm(router, "/payment/notify/vb_main", fields.Encode())

		require.Equal(t, http.StatusOK, res.Code)
		require.Empty(t, res.Body.String())
	})
}
