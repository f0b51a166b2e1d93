package econ

import "fmt"

// UnknownCountryError reports a country name that is absent from the
// trained encoding table. Always a client-input problem, never a server
// fault; the lookup is exact, so a spelling or casing mismatch lands here.
type UnknownCountryError struct {
	Country string
}

func (e *UnknownCountryError) Error() string {
	return fmt.Sprintf("country %q not found in training data", e.Country)
}

// InvalidInputError reports a scenario field that is missing, non-finite,
// or outside the accepted range. Raised before the model is invoked.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientHistoryError reports that no usable historical observations
// exist to derive a baseline. A country can be a valid model category and
// still have no recorded history, so this is distinct from
// UnknownCountryError. Indicator is set when one indicator has no
// observed values even though the country has rows.
type InsufficientHistoryError struct {
	Country   string
	Indicator string
}

func (e *InsufficientHistoryError) Error() string {
	if e.Indicator != "" {
		return fmt.Sprintf("no recorded %s history for country %q", e.Indicator, e.Country)
	}
	return fmt.Sprintf("no historical data for country %q", e.Country)
}

// StartupLoadError reports that a required artifact failed to load at
// process start. Fatal: the process must not serve requests after one.
type StartupLoadError struct {
	Artifact string
	Err      error
}

func (e *StartupLoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Artifact, e.Err)
}

func (e *StartupLoadError) Unwrap() error {
	return e.Err
}
