package domain

// DroneStatus is the availability flag of a drone. Values other than the
// constants below may be seeded externally and are passed through untouched.
type DroneStatus string

const (
	DroneAvailable DroneStatus = "Available"
	DroneBooked    DroneStatus = "Booked"
)

// DefaultPricePerHr applies when a drone is stored without a price.
const DefaultPricePerHr = 500.0

// Drone is a bookable resource owned by an owner profile.
type Drone struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Type           string      `json:"type"`
	Lat            float64     `json:"lat"`
	Lon            float64     `json:"lon"`
	Status         DroneStatus `json:"status"`
	PricePerHr     float64     `json:"price_per_hr"`
	ImageURL       string      `json:"image_url,omitempty"`
	BatteryMah     *float64    `json:"battery_mah,omitempty"`
	CapacityLiters *float64    `json:"capacity_liters,omitempty"`
	OwnerID        int64       `json:"owner_id"`
}
