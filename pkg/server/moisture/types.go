package moisture

type (
	Controller interface {
		SampleNow() (float64, error)
	}

	Handler struct {
		controller Controller
	}

	MoistureResponse struct {
		Moisture float64 `json:"moisture"`
	}
)
