package vty

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/fabriclab-net/fabriclab/pkg/util"
)

// PeerState is a BGP session state as reported by FRR.
type PeerState string

const (
	StateIdle        PeerState = "Idle"
	StateConnect     PeerState = "Connect"
	StateActive      PeerState = "Active"
	StateOpenSent    PeerState = "OpenSent"
	StateOpenConfirm PeerState = "OpenConfirm"
	StateEstablished PeerState = "Established"
	StateUnknown     PeerState = "Unknown"
)

var knownStates = map[string]PeerState{
	"Idle":        StateIdle,
	"Connect":     StateConnect,
	"Active":      StateActive,
	"OpenSent":    StateOpenSent,
	"OpenConfirm": StateOpenConfirm,
	"Established": StateEstablished,
}

// NormalizeState maps an FRR state string onto the PeerState enum.
// Unrecognized or empty strings become StateUnknown.
func NormalizeState(s string) PeerState {
	if st, ok := knownStates[s]; ok {
		return st
	}
	return StateUnknown
}

// PeerStatus is the looked-up state of one BGP neighbor. Raw preserves the
// device's state string when it did not map onto the enum.
type PeerStatus struct {
	Neighbor string
	State    PeerState
	Raw      string
}

// addressFamily is the per-AF slice of "show bgp summary json" output.
type addressFamily struct {
	Peers map[string]struct {
		State string `json:"state"`
	} `json:"peers"`
}

// Summary holds the decoded peer tables of every address family in a
// "show bgp summary json" report.
type Summary struct {
	families map[string]addressFamily
}

// ParseSummary decodes the JSON BGP summary. Invalid JSON is a hard
// failure; top-level values that are not address-family objects (counters,
// strings) are skipped, matching FRR's mixed top-level layout.
func ParseSummary(raw string) (Summary, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return Summary{}, &util.ParseError{Reason: "BGP summary is not valid JSON", Raw: raw, Err: err}
	}

	families := make(map[string]addressFamily, len(top))
	for name, data := range top {
		var af addressFamily
		if json.Unmarshal(data, &af) == nil && af.Peers != nil {
			families[name] = af
		}
	}
	return Summary{families: families}, nil
}

// FindPeerState searches every address family for the neighbor. At most one
// match is expected, so iteration order does not matter. A neighbor present
// without a state field reports StateUnknown; ok=false means the neighbor
// appears in no peer table, which is distinct from Unknown.
func (s Summary) FindPeerState(neighbor string) (PeerStatus, bool) {
	for _, af := range s.families {
		peer, ok := af.Peers[neighbor]
		if !ok {
			continue
		}
		return PeerStatus{
			Neighbor: neighbor,
			State:    NormalizeState(peer.State),
			Raw:      peer.State,
		}, true
	}
	return PeerStatus{}, false
}

// prefixReport is the decoded-once shape of "routes json" output: either a
// direct numPrefix count or a routes map keyed by route distinguisher.
type prefixReport struct {
	NumPrefix *int                       `json:"numPrefix"`
	Routes    map[string]json.RawMessage `json:"routes"`
}

// ParsePrefixCount extracts the prefix count from the JSON report of routes
// received from a neighbor.
//
// A top-level numPrefix field wins when present; a negative value is a hard
// failure, never coerced. Otherwise the per-RD collections under "routes"
// are sized and summed; an absent or empty routes map yields 0, since zero
// received routes is a valid state.
func ParsePrefixCount(raw string) (int, error) {
	var report prefixReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return 0, &util.ParseError{Reason: "EVPN routes report is not valid JSON", Raw: raw, Err: err}
	}

	if report.NumPrefix != nil {
		if *report.NumPrefix < 0 {
			return 0, &util.ParseError{
				Reason: "EVPN routes report has negative numPrefix",
				Raw:    raw,
			}
		}
		return *report.NumPrefix, nil
	}

	total := 0
	for _, entries := range report.Routes {
		total += collectionLen(entries)
	}
	return total, nil
}

// collectionLen returns the cardinality of a JSON list or object, 0 for
// anything else.
func collectionLen(data json.RawMessage) int {
	var list []json.RawMessage
	if json.Unmarshal(data, &list) == nil {
		return len(list)
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(data, &obj) == nil {
		return len(obj)
	}
	return 0
}

// routeLineRE matches genuine route lines in "advertised-routes" text
// output: optional leading whitespace, one or more BGP status flags
// (* > s i d h), whitespace, then the opening bracket of the EVPN prefix
// notation, e.g.:
//
//	*> [2]:[0]:[48]:[aa:c1:ab:7f:ba:bb]
//	*> [3]:[0]:[32]:[10.0.1.1]
//
// Headers ("Status codes: ..."), blank lines, and continuation lines do
// not match.
var routeLineRE = regexp.MustCompile(`^\s*[*>sidh]+\s+\[`)

// CountRouteLines counts route lines in the advertised-routes text table.
// It is a pure function of the text: re-counting always yields the same
// value.
func CountRouteLines(raw string) int {
	count := 0
	for _, line := range strings.Split(raw, "\n") {
		if routeLineRE.MatchString(line) {
			count++
		}
	}
	return count
}
