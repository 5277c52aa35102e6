package domain

// DeviceSpecs describes the handset features sent to the prediction
// endpoints. Fields mirror the model's training features.
type DeviceSpecs struct {
	Brand         string  `json:"brand,omitempty"`
	RAMMB         int     `json:"ram_mb"`
	BatteryMAh    int     `json:"battery_mah"`
	InternalMemGB int     `json:"internal_mem_gb"`
	WeightG       float64 `json:"weight_g"`
	PxHeight      int     `json:"px_height"`
	PxWidth       int     `json:"px_width"`
	ClockSpeedGHz float64 `json:"clock_speed_ghz"`
	NCores        int     `json:"n_cores"`
	TalkTimeHours int     `json:"talk_time_hours"`
	FourG         bool    `json:"four_g"`
	TouchScreen   bool    `json:"touch_screen"`
	WiFi          bool    `json:"wifi"`
}

// PriceBandLabels names the four price classes the model predicts.
var PriceBandLabels = map[int]string{
	0: "budget",
	1: "mid-range",
	2: "upper mid-range",
	3: "flagship",
}

// PricePrediction is the response from the price inference endpoint.
type PricePrediction struct {
	PriceBand  int     `json:"price_band"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// RAMPrediction is the response from the RAM inference endpoint.
type RAMPrediction struct {
	RAMMB      int     `json:"ram_mb"`
	Confidence float64 `json:"confidence"`
}

// BatteryPrediction is the response from the battery inference endpoint.
type BatteryPrediction struct {
	BatteryMAh int     `json:"battery_mah"`
	Confidence float64 `json:"confidence"`
}

// BrandPrediction is the response from the brand inference endpoint.
type BrandPrediction struct {
	Brand      string  `json:"brand"`
	Confidence float64 `json:"confidence"`
}

// DeviceMatch is one row of a device search result.
type DeviceMatch struct {
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	RAMMB      int    `json:"ram_mb"`
	BatteryMAh int    `json:"battery_mah"`
	PriceBand  int    `json:"price_band"`
}
