package watering

import (
	"errors"
	"net/http"
	"testing"

	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/pkg/utils"
	"github.com/google/uuid"
)

func TestWateringGet(t *testing.T) {
	controller := mockController{}
	pump := mockPumpSensor{}
	handler := NewHandler(&controller, &pump, "")

	t.Run("should return the pump state", func(t *testing.T) {
		pump.on = true
		pump.err = nil
		controller.status = irrigation.Status{PumpRunning: true, WateringSeconds: 5}

		rr := utils.TestRequest(t, http.MethodGet, "/v1/watering", nil, handler.handlerWateringGet)

		utils.TestExpectedStatus(t, rr, http.StatusOK)

		var response WateringResponse
		utils.TestDecodeResponse(t, rr, &response)
		if !response.PumpOn || !response.PumpRunning || response.WateringSeconds != 5 {
			t.Errorf("unexpected response %+v", response)
		}
	})

	t.Run("should fail when the pump cannot be read", func(t *testing.T) {
		pump.err = errors.New("gpio fault")

		rr := utils.TestRequest(t, http.MethodGet, "/v1/watering", nil, handler.handlerWateringGet)

		utils.TestExpectedStatus(t, rr, http.StatusInternalServerError)
	})
}

func TestWateringStart(t *testing.T) {
	controller := mockController{}
	handler := NewHandler(&controller, &mockPumpSensor{}, "")

	t.Run("should start a cycle", func(t *testing.T) {
		controller.err = nil
		controller.cycle = irrigation.Cycle{ID: uuid.New(), Duration: 5000, OnDemand: true}

		rr := utils.TestRequest(t, http.MethodPost, "/v1/watering", nil, handler.handlerWateringStart)

		utils.TestExpectedStatus(t, rr, http.StatusAccepted)
		utils.TestExpectedMessage(t, rr, controller.cycle.ID.String())
	})

	t.Run("should report a running cycle", func(t *testing.T) {
		controller.err = &irrigation.BusyError{Resource: irrigation.RESOURCE_PUMP}

		rr := utils.TestRequest(t, http.MethodPost, "/v1/watering", nil, handler.handlerWateringStart)

		utils.TestExpectedStatus(t, rr, http.StatusConflict)
	})

	t.Run("should fail when the pump faults", func(t *testing.T) {
		controller.err = &irrigation.FaultError{Device: irrigation.RESOURCE_PUMP, Op: "turn on", Err: errors.New("relay")}

		rr := utils.TestRequest(t, http.MethodPost, "/v1/watering", nil, handler.handlerWateringStart)

		utils.TestExpectedStatus(t, rr, http.StatusInternalServerError)
	})
}

type mockController struct {
	cycle  irrigation.Cycle
	status irrigation.Status
	err    error
}

func (m *mockController) RunCycle() (irrigation.Cycle, error) {
	if m.err != nil {
		return irrigation.Cycle{}, m.err
	}
	return m.cycle, nil
}

func (m *mockController) Status() irrigation.Status {
	return m.status
}

type mockPumpSensor struct {
	on  bool
	err error
}

func (m *mockPumpSensor) IsPumpOn() (bool, error) {
	return m.on, m.err
}
