package models

import "time"

// MarketState is the trading state of an exchange at an instant.
type MarketState struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	LocalTime string `json:"local_time"`
	Open      bool   `json:"open"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

// ClockReadings are the alternate clocks derived from one instant.
type ClockReadings struct {
	Instant  time.Time `json:"instant"`
	Timezone string    `json:"timezone"`
	Local    string    `json:"local"`

	PhiTime      string `json:"phi_time"`
	PiTime       string `json:"pi_time"`
	ETime        string `json:"e_time"`
	MetricTime   string `json:"metric_time"`
	DecimalTime  string `json:"decimal_time"`
	HexTime      string `json:"hex_time"`
	InternetTime string `json:"internet_time"`
	Stardate     string `json:"stardate"`
	SiderealTime string `json:"sidereal_time"`
	MarsTime     string `json:"mars_time"`
	JovianTime   string `json:"jovian_time"`

	UnixEpochProgress float64 `json:"unix_epoch_progress"`
	PlanckUnits       string  `json:"planck_units"`
	GPSDilation       string  `json:"gps_dilation"`
	QuaternionTime    string  `json:"quaternion_time"`
	PolarAngle        string  `json:"polar_angle"`
	RecursionState    string  `json:"recursion_state"`
	GCDPattern        bool    `json:"gcd_pattern"`
	RecursionBaseCase bool    `json:"recursion_base_case"`

	GalacticYearProgress string         `json:"galactic_year_progress"`
	AsteroidBeltTime     string         `json:"asteroid_belt_time"`
	CosmicCalendar       CosmicCalendar `json:"cosmic_calendar"`
	PulsarRotations      int            `json:"pulsar_rotations"`
	MilkyWaySupernovae   string         `json:"milky_way_supernovae"`
	Lunar                LunarPhase     `json:"lunar"`

	Tide           TideState `json:"tide"`
	WavesToday     int       `json:"waves_today"`
	WhaleMigration string    `json:"whale_migration"`
	PlanktonDepth  int       `json:"plankton_depth_m"`

	CesiumOscillations string `json:"cesium_oscillations"`
	LHCRevolutions     int64  `json:"lhc_revolutions"`
	Carbon14Decays     int64  `json:"carbon14_decays"`

	Exoplanets []ExoplanetClock  `json:"exoplanets"`
	Fibonacci  []FibonacciSquare `json:"fibonacci"`

	LightSeconds map[string]string `json:"light_seconds"`
	Markets      []MarketState     `json:"markets"`
}

// CosmicCalendar maps the local day onto a one-year history of the universe.
type CosmicCalendar struct {
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type LunarPhase struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Progress float64 `json:"progress"`
}

// TideState is a position in the 12.42 hour semidiurnal cycle.
type TideState struct {
	Phase    string `json:"phase"`
	Progress string `json:"progress"`
	NextHigh string `json:"next_high_hours"`
}

type ExoplanetClock struct {
	Name    string `json:"name"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Season  string `json:"season"`
}

// FibonacciSquare is one tile of the Fibonacci clock. Role is hours,
// minutes, both or off.
type FibonacciSquare struct {
	Value int    `json:"value"`
	Role  string `json:"role"`
}

// ClockTick is one sampler snapshot, pushed to live subscribers.
type ClockTick struct {
	Sample   TimeSample        `json:"-"`
	At       time.Time         `json:"at"`
	Timezone string            `json:"timezone"`
	Clock    string            `json:"clock"`
	Active   []DetectedPattern `json:"active"`
}
