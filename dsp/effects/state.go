package effects

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Root element name and format version of the state document.
const (
	StateTag     = "Einverb"
	StateVersion = 1
)

var (
	// ErrStateTag is returned when the document root is not StateTag.
	ErrStateTag = errors.New("effects: unexpected state root element")
	// ErrStateVersion is returned for documents written by a newer format.
	ErrStateVersion = errors.New("effects: unsupported state version")
)

// stateDocument is the persisted form: one element, one attribute per key.
type stateDocument struct {
	XMLName   xml.Name
	Version   string  `xml:"version,attr,omitempty"`
	DelayTime *string `xml:"delayTime,attr,omitempty"`
	DelayGain *string `xml:"delayGain,attr,omitempty"`
}

// WriteState writes the current parameter values as a state document.
func (ps *Params) WriteState(w io.Writer) error {
	s := ps.Snapshot()
	doc := stateDocument{
		XMLName:   xml.Name{Local: StateTag},
		Version:   strconv.Itoa(StateVersion),
		DelayTime: formatStateValue(s.DelayTime),
		DelayGain: formatStateValue(s.DelayGain),
	}
	if err := xml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("effects: encode state: %w", err)
	}
	return nil
}

// ReadState loads parameter values from a state document. Keys missing from
// the document take their default; a key that is present must hold a number,
// even if empty. On error the parameters are unchanged.
func (ps *Params) ReadState(r io.Reader) error {
	var doc stateDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("effects: decode state: %w", err)
	}
	if doc.XMLName.Local != StateTag {
		return fmt.Errorf("%w: %q", ErrStateTag, doc.XMLName.Local)
	}
	if doc.Version != "" {
		version, err := strconv.Atoi(doc.Version)
		if err != nil {
			return fmt.Errorf("effects: state version %q: %w", doc.Version, err)
		}
		if version > StateVersion {
			return fmt.Errorf("%w: %d is newer than %d", ErrStateVersion, version, StateVersion)
		}
	}

	s := DefaultState()
	var err error
	if s.DelayTime, err = parseStateValue(ParamDelayTime, doc.DelayTime, DefaultDelayTime); err != nil {
		return err
	}
	if s.DelayGain, err = parseStateValue(ParamDelayGain, doc.DelayGain, DefaultDelayGain); err != nil {
		return err
	}
	ps.Apply(s)
	return nil
}

func formatStateValue(v float64) *string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	return &s
}

func parseStateValue(key string, raw *string, def float64) (float64, error) {
	if raw == nil {
		return def, nil
	}
	v, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		return 0, fmt.Errorf("effects: state %s: %w", key, err)
	}
	return v, nil
}
