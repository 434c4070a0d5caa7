package models

// RollingCounter approximates "hits among the last N events" without storing the events.
//
// While Events < window every event increments Events and, on a hit, Hits. Once the window is
// full Events saturates at window (it never wraps); a hit then raises Hits up to window and a
// miss lowers it down to 0, so the counter can fall below a badge threshold again.
type RollingCounter struct {
	Hits   int `json:"hits" gorm:"not null;default:0"`
	Events int `json:"events" gorm:"not null;default:0"`
}

func (c *RollingCounter) Record(hit bool, window int) {
	if window <= 0 {
		return
	}
	if c.Events < window {
		c.Events++
		if hit {
			c.Hits++
		}
		return
	}
	c.Events = window
	if hit {
		if c.Hits < window {
			c.Hits++
		}
		return
	}
	if c.Hits > 0 {
		c.Hits--
	}
}

// Rolling window sizes.
const (
	PunctualityWindow          = 10
	CommunicationWindow        = 50
	EmpathyWindow              = 50
	DocumentationWindow        = 10
	DoctorAttendanceWindow     = 50
	PatientAttendanceWindow    = 10
	DetailedDocumentationWords = 30
)
