package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/pkg/utils"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

var testStatus = irrigation.Status{
	DrynessThreshold:       400,
	AverageMoisture:        388.5,
	WateringSeconds:        5,
	SampleFrequencyMinutes: 60,
	AutomationEnabled:      true,
	RefillHysteresisRatio:  1.1,
	DaysBeforeReset:        48.7,
}

func TestStatusGet(t *testing.T) {
	handler := NewHandler(&mockController{status: testStatus}, nil)

	rr := utils.TestRequest(t, http.MethodGet, "/v1/status", nil, handler.handlerStatusGet)

	utils.TestExpectedStatus(t, rr, http.StatusOK)

	var status irrigation.Status
	utils.TestDecodeResponse(t, rr, &status)
	if status.DrynessThreshold != 400 || status.AverageMoisture != 388.5 || !status.AutomationEnabled {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestResetGet(t *testing.T) {
	handler := NewHandler(&mockController{status: testStatus}, nil)

	rr := utils.TestRequest(t, http.MethodGet, "/v1/status/reset", nil, handler.handlerResetGet)

	utils.TestExpectedStatus(t, rr, http.StatusOK)
	utils.TestExpectedMessage(t, rr, `"days_before_reset":48.7`)
}

func TestStatusWebsocket(t *testing.T) {
	handler := NewHandler(&mockController{status: testStatus}, nil)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/status/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer c.Close(websocket.StatusNormalClosure, "")

	var status irrigation.Status
	if err := wsjson.Read(ctx, c, &status); err != nil {
		t.Fatalf("failed to read status: %v", err)
	}

	if status.WateringSeconds != 5 {
		t.Errorf("expected watering seconds 5, got %d", status.WateringSeconds)
	}
}

type mockController struct {
	status irrigation.Status
}

func (m *mockController) Status() irrigation.Status {
	return m.status
}
