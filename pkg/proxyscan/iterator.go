package proxyscan

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	MinPort = 1
	MaxPort = 65535
)

var ErrInvalidRange = errors.New("invalid port range")

// PortRange is an inclusive range of TCP ports.
type PortRange struct {
	Start int
	End   int
}

var (
	// TopPorts covers the well-known ports.
	TopPorts = PortRange{Start: 1, End: 1024}
	// FullPorts covers every TCP port.
	FullPorts = PortRange{Start: MinPort, End: MaxPort}
)

func (r PortRange) Validate() error {
	if !isValidPort(r.Start) || !isValidPort(r.End) {
		return errors.Wrapf(ErrInvalidRange, "%d-%d outside %d-%d", r.Start, r.End, MinPort, MaxPort)
	}
	if r.Start > r.End {
		return errors.Wrapf(ErrInvalidRange, "start %d greater than end %d", r.Start, r.End)
	}
	return nil
}

func (r PortRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Ports materializes the range in ascending order.
func (r PortRange) Ports() []int {
	ports := make([]int, 0, r.Len())
	for p := r.Start; p <= r.End; p++ {
		ports = append(ports, p)
	}
	return ports
}

func (r PortRange) String() string {
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}

// ParsePortSpec parses "top", "full", "80", "80,443" and "100-200" forms
// (and mixes of the last three). Unlike a lenient parser, any bad token is
// an error. The result keeps first-seen order and has no duplicates.
func ParsePortSpec(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	switch strings.ToLower(spec) {
	case "":
		return nil, errors.Wrap(ErrInvalidRange, "empty port spec")
	case "top":
		return TopPorts.Ports(), nil
	case "full", "all":
		return FullPorts.Ports(), nil
	}

	ports := make([]int, 0)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, errors.Wrapf(ErrInvalidRange, "empty token in %q", spec)
		}
		if strings.Contains(part, "-") {
			r, err := ParsePortRange(part)
			if err != nil {
				return nil, err
			}
			ports = append(ports, r.Ports()...)
			continue
		}
		port, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidRange, "bad port %q", part)
		}
		if !isValidPort(port) {
			return nil, errors.Wrapf(ErrInvalidRange, "port %d outside %d-%d", port, MinPort, MaxPort)
		}
		ports = append(ports, port)
	}
	return removeDuplicateInt(ports), nil
}

// ParsePortRange parses a single "start-end" token.
func ParsePortRange(s string) (PortRange, error) {
	bounds := strings.Split(strings.TrimSpace(s), "-")
	if len(bounds) != 2 {
		return PortRange{}, errors.Wrapf(ErrInvalidRange, "bad range %q", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return PortRange{}, errors.Wrapf(ErrInvalidRange, "bad range start %q", bounds[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return PortRange{}, errors.Wrapf(ErrInvalidRange, "bad range end %q", bounds[1])
	}
	r := PortRange{Start: start, End: end}
	return r, r.Validate()
}

// Permute shuffles ports in place using rnd.
func Permute(ports []int, rnd *rand.Rand) {
	rnd.Shuffle(len(ports), func(i, j int) {
		ports[i], ports[j] = ports[j], ports[i]
	})
}

func removeDuplicateInt(intSlice []int) []int {
	keys := make(map[int]bool, len(intSlice))
	list := make([]int, 0, len(intSlice))
	for _, entry := range intSlice {
		if !keys[entry] {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}

func isValidPort(p int) bool {
	return p >= MinPort && p <= MaxPort
}

// PortIterator walks a fixed port sequence once.
type PortIterator struct {
	ports []int
	index int
}

// NewPortIterator builds the sequence for a scan. An explicit port list
// takes precedence over the range; rnd is only used when randomize is set.
func NewPortIterator(r PortRange, explicit []int, randomize bool, rnd *rand.Rand) (*PortIterator, error) {
	var ports []int
	if len(explicit) > 0 {
		for _, p := range explicit {
			if !isValidPort(p) {
				return nil, errors.Wrapf(ErrInvalidRange, "port %d outside %d-%d", p, MinPort, MaxPort)
			}
		}
		ports = removeDuplicateInt(explicit)
	} else {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		ports = r.Ports()
	}

	if randomize {
		if rnd == nil {
			return nil, errors.New("randomize requires a random source")
		}
		Permute(ports, rnd)
	}
	return &PortIterator{ports: ports}, nil
}

func (pi *PortIterator) Next() (int, bool) {
	if pi.index >= len(pi.ports) {
		return 0, false
	}
	port := pi.ports[pi.index]
	pi.index++
	return port, true
}

func (pi *PortIterator) Reset() {
	pi.index = 0
}

func (pi *PortIterator) Total() int {
	return len(pi.ports)
}

// Ports returns a copy of the full sequence.
func (pi *PortIterator) Ports() []int {
	out := make([]int, len(pi.ports))
	copy(out, pi.ports)
	return out
}
