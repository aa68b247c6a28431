package heartbeat

import (
	"fmt"
	"time"

	"github.com/gadomski/atlas/internal/units"
)

// Heartbeat is one finalized status report from the station. Immutable once
// built.
type Heartbeat struct {
	// StartTime is the session time of the first constituent message.
	StartTime time.Time

	// ExternalTemperature is measured by a probe on the southern tower.
	ExternalTemperature units.Celsius

	// MountTemperature is the temperature inside the scanner mount.
	MountTemperature units.Celsius

	Pressure units.Millibar
	Humidity units.Percentage

	// SOC1 and SOC2 are the state of charge of the two battery banks.
	SOC1 units.OrionPercentage
	SOC2 units.OrionPercentage

	// LastScan is the most recent scan. Format-1 heartbeats carry only its
	// start time.
	LastScan Scan

	// The remaining sub-records come through in format 2 only.
	LastScannerOn   *ScannerOn
	LastScanSkip    *SkippedScan
	LastEfoy1Action *EfoyAction
	LastEfoy2Action *EfoyAction
}

// ScannerOn records a scanner power-on event.
type ScannerOn struct {
	Datetime           time.Time
	ScannerVoltage     units.Volt
	ScannerTemperature units.Celsius

	// Available USB storage and internal scanner memory.
	MemoryExternal units.Kilobyte
	MemoryInternal units.Kilobyte
}

// Scan describes a completed scan.
type Scan struct {
	Start time.Time

	// End and Detail are not provided by format 1.
	End    *time.Time
	Detail *ScanDetail
}

// ScanDetail is the extra scan information format 2 provides.
type ScanDetail struct {
	NumPoints        uint64
	MinimumRange     units.Meter
	MaximumRange     units.Meter
	FileSize         units.Kilobyte
	MinimumAmplitude int
	MaximumAmplitude int

	// Roll and pitch come from the mount's inclination sensors.
	Roll      units.Degree
	Pitch     units.Degree
	Latitude  units.Degree
	Longitude units.Degree
}

// SkippedScan records a scan the scanner decided not to run.
type SkippedScan struct {
	Datetime time.Time
	Reason   SkipReason

	// Description is the free text sent with scanner errors.
	Description string
}

// SkipReason is the coded reason for a skipped scan.
type SkipReason int

const (
	// SkipCouldNotConnectToHousing: the scanner could not reach the housing
	// to report back.
	SkipCouldNotConnectToHousing SkipReason = iota + 1

	// SkipSchedulerNotEnabled: the housing scheduler is turned off.
	SkipSchedulerNotEnabled

	// SkipScannerError: a scanner-side error, described in free text.
	SkipScannerError

	// SkipTooManyRetries: the scanner tried to start too many times.
	SkipTooManyRetries
)

func (r SkipReason) String() string {
	switch r {
	case SkipCouldNotConnectToHousing:
		return "could not connect to housing"
	case SkipSchedulerNotEnabled:
		return "scheduler not enabled"
	case SkipScannerError:
		return "scanner error"
	case SkipTooManyRetries:
		return "too many retries"
	default:
		return fmt.Sprintf("unknown skip reason %d", int(r))
	}
}

// parseSkipReason maps the wire code to a SkipReason.
func parseSkipReason(code, description string) (SkipReason, error) {
	switch code {
	case "1":
		return SkipCouldNotConnectToHousing, nil
	case "2":
		return SkipSchedulerNotEnabled, nil
	case "3":
		return SkipScannerError, nil
	case "4":
		return SkipTooManyRetries, nil
	default:
		return 0, fmt.Errorf("unknown skip reason code %q (%q)", code, description)
	}
}

// EfoyAction is the last thing one of the EFOY fuel cells did.
type EfoyAction struct {
	Kind     EfoyActionKind
	Datetime time.Time
}

// EfoyActionKind classifies a fuel cell action.
type EfoyActionKind int

const (
	// EfoyStart: the fuel cell started charging.
	EfoyStart EfoyActionKind = iota + 1

	// EfoyFailure: the fuel cell failed at charging.
	EfoyFailure

	// EfoySuccess: the fuel cell finished charging.
	EfoySuccess
)

func (k EfoyActionKind) String() string {
	switch k {
	case EfoyStart:
		return "start"
	case EfoyFailure:
		return "fail"
	case EfoySuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown efoy action %d", int(k))
	}
}

// efoyDatetimeLayout covers the first nineteen characters of the fuel cell
// timestamp, which uses a four-digit year unlike the rest of the report.
const efoyDatetimeLayout = "01/02/2006 15:04:05"

// parseEfoyAction parses a fuel cell row's timestamp and action word.
func parseEfoyAction(datetime, word string) (*EfoyAction, error) {
	if len(datetime) < len(efoyDatetimeLayout) {
		return nil, fmt.Errorf("efoy datetime too short: %q", datetime)
	}
	t, err := time.Parse(efoyDatetimeLayout, datetime[:len(efoyDatetimeLayout)])
	if err != nil {
		return nil, err
	}
	var kind EfoyActionKind
	switch word {
	case "start":
		kind = EfoyStart
	case "fail":
		kind = EfoyFailure
	case "success":
		kind = EfoySuccess
	default:
		return nil, fmt.Errorf("unknown efoy action %q", word)
	}
	return &EfoyAction{Kind: kind, Datetime: t.UTC()}, nil
}

// ExpectedNextScanTime returns the start of the next six-hour scan interval
// after the given scan start.
func ExpectedNextScanTime(t time.Time) time.Time {
	t = t.UTC()
	lastHour := t.Hour() - t.Hour()%6
	return time.Date(t.Year(), t.Month(), t.Day(), lastHour, 0, 0, 0, time.UTC).
		Add(6 * time.Hour)
}
