package units

import "fmt"

// Celsius is a temperature in degrees Celsius.
type Celsius float64

func (c Celsius) String() string { return fmt.Sprintf("%.1f°C", float64(c)) }

// Millibar is an atmospheric pressure.
type Millibar float64

func (m Millibar) String() string { return fmt.Sprintf("%.1f mbar", float64(m)) }

// Percentage is a percentage, usually between zero and one hundred.
type Percentage float64

func (p Percentage) String() string { return fmt.Sprintf("%.1f%%", float64(p)) }

// OrionPercentage is a state-of-charge reading from the Orion battery
// management system, reported as a logic-level voltage between zero and five.
type OrionPercentage float64

// Percentage converts the logic-level reading to a zero-to-one-hundred scale.
func (o OrionPercentage) Percentage() Percentage {
	return Percentage(float64(o) / 5 * 100)
}

func (o OrionPercentage) String() string { return o.Percentage().String() }

// Volt is an electric potential.
type Volt float64

func (v Volt) String() string { return fmt.Sprintf("%.1f V", float64(v)) }

// Kilobyte is a data size.
type Kilobyte float64

func (k Kilobyte) String() string { return fmt.Sprintf("%.0f kB", float64(k)) }

// Meter is a distance.
type Meter float64

func (m Meter) String() string { return fmt.Sprintf("%.3f m", float64(m)) }

// Degree is an angle, also used for latitude and longitude.
type Degree float64

func (d Degree) String() string { return fmt.Sprintf("%.3f°", float64(d)) }
