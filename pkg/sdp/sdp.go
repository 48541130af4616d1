// Package sdp contains a SDP decoder for RTSP DESCRIBE responses.
package sdp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	psdp "github.com/pion/sdp/v3"
)

var (
	reVersion = regexp.MustCompile(`^v=([0-9]+)$`)
	reOrigin  = regexp.MustCompile(`^o=([^ ]+) ([0-9]+) ([0-9]+) (IN) (IP4|IP6) ([^ ]+)$`)
	reSession = regexp.MustCompile(`^s=([^\r\n]+)$`)
	reTiming  = regexp.MustCompile(`^t=([0-9]+) ([0-9]+)$`)
	reMedia   = regexp.MustCompile(`^m=([^ ]+) ([0-9]+)(?:/([0-9]+))? ([^ ]+)((?: [0-9]+)+)$`)
	reRange   = regexp.MustCompile(`^range:\s*([a-zA-Z-]+)=([0-9.]+|now)\s*-\s*([0-9.]*)$`)
	reRTPMap  = regexp.MustCompile(`^rtpmap:(\d+) (.*)$`)
	reFMTP    = regexp.MustCompile(`^fmtp:(\d+) (.*)$`)
)

var errDuplicate = errors.New("duplicate session-level field")

// PayloadType is the canonical codec of a media.
type PayloadType int

// payload types.
const (
	PayloadTypeUnknown PayloadType = iota
	PayloadTypeH264
	PayloadTypeAAC
)

var payloadTypeLabels = map[PayloadType]string{
	PayloadTypeUnknown: "unknown",
	PayloadTypeH264:    "H264",
	PayloadTypeAAC:     "AAC",
}

// String implements fmt.Stringer.
func (pt PayloadType) String() string {
	if l, ok := payloadTypeLabels[pt]; ok {
		return l
	}
	return fmt.Sprintf("unknown (%d)", int(pt))
}

// PayloadTypeFromName maps a rtpmap encoding name to a PayloadType.
func PayloadTypeFromName(name string) PayloadType {
	switch strings.ToUpper(name) {
	case "H264":
		return PayloadTypeH264

	case "AAC", "MP4A-LATM", "MPEG4-GENERIC":
		return PayloadTypeAAC
	}
	return PayloadTypeUnknown
}

// RTPMap is the content of a a=rtpmap attribute.
type RTPMap struct {
	// uppercased encoding name.
	Name      string
	ClockRate int
	EncParams string
}

// Range is the content of a a=range attribute.
type Range struct {
	Unit string
	// -1 when the range starts from "now".
	Start float64
	End   float64
	// whether an end value is present.
	HasEnd bool
}

// Media is a media block, opened by a m= line.
type Media struct {
	Type    string
	Port    psdp.RangedPort
	Protos  []string
	Formats []int

	// keyed by payload type.
	RTPMap map[int]RTPMap

	// keys are lowercased.
	FMTP map[string]string

	Control string
	Range   *Range

	// zero when not signaled.
	Direction psdp.Direction

	// attributes that are not decoded.
	Attributes []psdp.Attribute
}

// PayloadType returns the canonical codec of the media, deduced from rtpmap.
func (m *Media) PayloadType() PayloadType {
	for _, f := range m.Formats {
		if rm, ok := m.RTPMap[f]; ok {
			if pt := PayloadTypeFromName(rm.Name); pt != PayloadTypeUnknown {
				return pt
			}
		}
	}
	return PayloadTypeUnknown
}

// ClockRate returns the clock rate of the first format that declares one.
func (m *Media) ClockRate() int {
	for _, f := range m.Formats {
		if rm, ok := m.RTPMap[f]; ok {
			return rm.ClockRate
		}
	}
	return 0
}

// SessionDescription is a SDP session description.
type SessionDescription struct {
	Version     psdp.Version
	Origin      *psdp.Origin
	SessionName psdp.SessionName
	Timing      *psdp.Timing

	// keyed by media type (video, audio, ...).
	Medias map[string]*Media

	// lines that were not recognized, or session-level attributes.
	IgnoredLines []string

	mediaTypes    []string
	byPayloadType map[int]*Media
	hasVersion    bool
	hasSession    bool
}

// Media returns the media block of a given type.
func (s *SessionDescription) Media(typ string) *Media {
	return s.Medias[typ]
}

// MediaTypes returns the media types in order of appearance.
func (s *SessionDescription) MediaTypes() []string {
	return s.mediaTypes
}

// MediaByPayloadType returns the media block that declares a payload type,
// or nil.
func (s *SessionDescription) MediaByPayloadType(pt int) *Media {
	return s.byPayloadType[pt]
}

func (s *SessionDescription) unmarshalVersion(line string) error {
	if s.hasVersion {
		return errDuplicate
	}

	m := reVersion.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("invalid version line '%s'", line)
	}

	v, _ := strconv.Atoi(m[1])
	if v != 0 {
		return fmt.Errorf("unsupported SDP version %d", v)
	}

	s.Version = psdp.Version(v)
	s.hasVersion = true
	return nil
}

func (s *SessionDescription) unmarshalOrigin(line string) error {
	if s.Origin != nil {
		return errDuplicate
	}

	m := reOrigin.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("invalid origin line '%s'", line)
	}

	id, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return err
	}

	ver, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return err
	}

	s.Origin = &psdp.Origin{
		Username:       m[1],
		SessionID:      id,
		SessionVersion: ver,
		NetworkType:    m[4],
		AddressType:    m[5],
		UnicastAddress: m[6],
	}
	return nil
}

func (s *SessionDescription) unmarshalSessionName(line string) error {
	if s.hasSession {
		return errDuplicate
	}

	m := reSession.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("invalid session name line '%s'", line)
	}

	s.SessionName = psdp.SessionName(m[1])
	s.hasSession = true
	return nil
}

func (s *SessionDescription) unmarshalTiming(line string) error {
	if s.Timing != nil {
		return errDuplicate
	}

	m := reTiming.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("invalid timing line '%s'", line)
	}

	start, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return err
	}

	stop, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return err
	}

	s.Timing = &psdp.Timing{StartTime: start, StopTime: stop}
	return nil
}

func unmarshalMedia(line string) (*Media, error) {
	m := reMedia.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("invalid media line '%s'", line)
	}

	port, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s'", m[2])
	}

	md := &Media{
		Type:   m[1],
		Port:   psdp.RangedPort{Value: port},
		Protos: strings.Split(m[4], "/"),
		RTPMap: make(map[int]RTPMap),
		FMTP:   make(map[string]string),
	}

	if m[3] != "" {
		n, err2 := strconv.Atoi(m[3])
		if err2 != nil {
			return nil, fmt.Errorf("invalid port count '%s'", m[3])
		}
		md.Port.Range = &n
	}

	for _, f := range strings.Fields(m[5]) {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid format '%s'", f)
		}
		md.Formats = append(md.Formats, v)
	}

	return md, nil
}

func unmarshalRange(value string) (*Range, error) {
	m := reRange.FindStringSubmatch(value)
	if m == nil {
		return nil, fmt.Errorf("invalid range '%s'", value)
	}

	ra := &Range{Unit: m[1]}

	if m[2] == "now" {
		ra.Start = -1
	} else {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range start '%s'", m[2])
		}
		ra.Start = v
	}

	if m[3] != "" {
		v, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range end '%s'", m[3])
		}
		ra.End = v
		ra.HasEnd = true
	}

	return ra, nil
}

func unmarshalRTPMap(value string) (int, *RTPMap, error) {
	m := reRTPMap.FindStringSubmatch(value)
	if m == nil {
		return 0, nil, fmt.Errorf("invalid rtpmap '%s'", value)
	}

	pt, _ := strconv.Atoi(m[1])

	parts := strings.Split(strings.TrimSpace(m[2]), "/")

	rm := &RTPMap{
		Name: strings.ToUpper(parts[0]),
	}

	if len(parts) >= 2 {
		v, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, nil, fmt.Errorf("invalid clock rate '%s'", parts[1])
		}
		rm.ClockRate = v
	}

	if len(parts) >= 3 {
		rm.EncParams = parts[2]
	}

	return pt, rm, nil
}

func unmarshalFMTP(value string, dest map[string]string) error {
	m := reFMTP.FindStringSubmatch(value)
	if m == nil {
		return fmt.Errorf("invalid fmtp '%s'", value)
	}

	for _, kv := range strings.Split(m[2], ";") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}

		i := strings.IndexByte(kv, '=')
		if i < 0 {
			dest[strings.ToLower(kv)] = ""
			continue
		}

		dest[strings.ToLower(strings.TrimSpace(kv[:i]))] = strings.TrimSpace(kv[i+1:])
	}

	return nil
}

func (s *SessionDescription) unmarshalAttribute(md *Media, line string) error {
	// session-level attributes are not stored.
	if md == nil {
		s.IgnoredLines = append(s.IgnoredLines, line)
		return nil
	}

	value := line[2:]

	if dir, err := psdp.NewDirection(value); err == nil {
		md.Direction = dir
		return nil
	}

	switch {

	case strings.HasPrefix(value, "range:"):
		ra, err := unmarshalRange(value)
		if err != nil {
			return err
		}
		md.Range = ra

	case strings.HasPrefix(value, "control:"):
		md.Control = strings.TrimSpace(value[len("control:"):])

	case strings.HasPrefix(value, "rtpmap:"):
		pt, rm, err := unmarshalRTPMap(value)
		if err != nil {
			return err
		}
		md.RTPMap[pt] = *rm

	case strings.HasPrefix(value, "fmtp:"):
		err := unmarshalFMTP(value, md.FMTP)
		if err != nil {
			return err
		}

	default:
		key, val, _ := strings.Cut(value, ":")
		md.Attributes = append(md.Attributes, psdp.NewAttribute(key, val))
		s.IgnoredLines = append(s.IgnoredLines, line)
	}

	return nil
}

func (s *SessionDescription) finalizeMedia(md *Media) {
	if md == nil {
		return
	}

	if _, ok := s.Medias[md.Type]; !ok {
		s.mediaTypes = append(s.mediaTypes, md.Type)
	}
	s.Medias[md.Type] = md
}

// Unmarshal decodes a SessionDescription.
func (s *SessionDescription) Unmarshal(byts []byte) error {
	*s = SessionDescription{
		Medias:        make(map[string]*Media),
		byPayloadType: make(map[int]*Media),
	}

	var cur *Media

	for _, line := range strings.Split(string(byts), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		if len(line) < 2 || line[1] != '=' {
			s.IgnoredLines = append(s.IgnoredLines, line)
			continue
		}

		var err error

		switch line[0] {
		case 'v':
			err = s.unmarshalVersion(line)

		case 'o':
			err = s.unmarshalOrigin(line)

		case 's':
			err = s.unmarshalSessionName(line)

		case 't':
			err = s.unmarshalTiming(line)

		case 'm':
			var md *Media
			md, err = unmarshalMedia(line)
			if err == nil {
				s.finalizeMedia(cur)
				cur = md
				for _, f := range md.Formats {
					s.byPayloadType[f] = md
				}
			}

		case 'a':
			err = s.unmarshalAttribute(cur, line)

		default:
			s.IgnoredLines = append(s.IgnoredLines, line)
		}

		if err != nil {
			return fmt.Errorf("line '%s': %w", line, err)
		}
	}

	s.finalizeMedia(cur)

	return nil
}
